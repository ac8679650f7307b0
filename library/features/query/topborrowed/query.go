package topborrowed

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	queryType = "TopBorrowed"
)

// Query represents the intent to rank the books borrowed most in the WindowDays before Now.
type Query struct {
	WindowDays int
	Limit      int
	Now        time.Time
}

// BuildQuery creates a new Query. Zero windowDays or limit select the defaults (30 days, 3 titles).
func BuildQuery(windowDays, limit int, now time.Time) Query {
	if windowDays == 0 {
		windowDays = circulation.DefaultRankingWindowDays
	}

	if limit == 0 {
		limit = circulation.DefaultRankingLimit
	}

	return Query{
		WindowDays: windowDays,
		Limit:      limit,
		Now:        now,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
