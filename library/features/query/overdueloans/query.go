package overdueloans

import (
	"time"
)

const (
	queryType = "OverdueLoans"
)

// Query represents the intent to list, or only count, the overdue loans at Now.
type Query struct {
	Now       time.Time
	CountOnly bool
}

// BuildQuery creates a new Query listing the loans overdue at now.
func BuildQuery(now time.Time) Query {
	return Query{
		Now: now,
	}
}

// BuildCountQuery creates a new Query that only counts the loans overdue at now.
func BuildCountQuery(now time.Time) Query {
	return Query{
		Now:       now,
		CountOnly: true,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
