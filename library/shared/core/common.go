package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// ToOccurredAt normalizes to UTC with microsecond precision, the resolution of the journal.
func ToOccurredAt(t time.Time) OccurredAt {
	return circulation.ToStoreTime(t)
}
