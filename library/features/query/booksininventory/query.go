package booksininventory

const (
	queryType = "BooksInInventory"
)

// Query represents the intent to list the inventory.
type Query struct {
	WithMetadata bool
}

// BuildQuery creates a new Query.
func BuildQuery(withMetadata bool) Query {
	return Query{
		WithMetadata: withMetadata,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
