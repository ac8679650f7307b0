package registeredusers

const (
	queryType = "RegisteredUsers"
)

// Query represents the intent to list registered users.
type Query struct {
	ActiveLoansOnly bool
}

// BuildQuery creates a new Query listing every user.
func BuildQuery() Query {
	return Query{}
}

// WithActiveLoansOnly restricts the query to users holding at least one active loan.
func (q Query) WithActiveLoansOnly() Query {
	q.ActiveLoansOnly = true
	return q
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
