package loansbyuser

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	queryType = "LoansByUser"
)

// Query represents the intent to list loans. A zero UserID lists the loans of every user.
type Query struct {
	UserID     circulation.UserID
	ActiveOnly bool
	Now        time.Time
}

// BuildQuery creates a new Query. now is used to flag overdue loans.
func BuildQuery(userID circulation.UserID, activeOnly bool, now time.Time) Query {
	return Query{
		UserID:     userID,
		ActiveOnly: activeOnly,
		Now:        now,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
