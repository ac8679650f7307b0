package activeloancount

import (
	"github.com/alexandrebha/cybook/circulation"
)

const (
	queryType = "ActiveLoanCount"
)

// Query represents the intent to count the active loans of a user.
type Query struct {
	UserID circulation.UserID
}

// BuildQuery creates a new Query with the provided user ID.
func BuildQuery(userID circulation.UserID) Query {
	return Query{
		UserID: userID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
