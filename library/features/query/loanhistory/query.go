package loanhistory

import (
	"github.com/alexandrebha/cybook/circulation"
)

const (
	queryType = "LoanHistory"

	// DefaultLimit caps the number of entries returned when no limit is given.
	DefaultLimit = 50
)

// Query represents the intent to read the journal. Zero UserID or BookID mean "any".
type Query struct {
	UserID circulation.UserID
	BookID circulation.BookID
	Limit  int
}

// BuildQuery creates a new Query. A limit ≤ 0 selects DefaultLimit.
func BuildQuery(userID circulation.UserID, bookID circulation.BookID, limit int) Query {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return Query{
		UserID: userID,
		BookID: bookID,
		Limit:  limit,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
