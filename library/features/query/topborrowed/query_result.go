package topborrowed

import (
	"github.com/alexandrebha/cybook/circulation"
)

// RankedBook is one row of the ranking. Rank starts at 1 and has no gaps.
type RankedBook struct {
	Rank     int
	BookID   circulation.BookID
	Count    int
	Metadata circulation.Metadata
}

// Ranking represents the query result.
type Ranking struct {
	WindowDays int
	Books      []RankedBook
	Dropped    []circulation.BookID
}
