package bookdetails

import (
	"strings"
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	queryType = "BookDetails"
)

// Query represents the intent to describe a book.
type Query struct {
	BookID     circulation.BookID
	WindowDays int
	Now        time.Time
}

// BuildQuery creates a new Query counting recent loans over the default ranking window.
func BuildQuery(bookID circulation.BookID, now time.Time) Query {
	return Query{
		BookID:     strings.TrimSpace(bookID),
		WindowDays: circulation.DefaultRankingWindowDays,
		Now:        now,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
