package loanhistory

import (
	"time"

	"github.com/alexandrebha/cybook/library/shared/core"
)

// Entry is one journaled decision.
type Entry struct {
	SequenceNumber int64
	EventType      string
	OccurredAt     time.Time
	Failed         bool
	Event          core.DomainEvent
}

// LoanHistory represents the query result.
type LoanHistory struct {
	Entries []Entry
	Count   int
}
