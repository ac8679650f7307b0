package catalogsearch

import (
	"strings"
)

const (
	queryType = "CatalogSearch"
)

// Query represents a free-text catalog search.
type Query struct {
	Text string
}

// BuildQuery creates a new Query.
func BuildQuery(text string) Query {
	return Query{
		Text: strings.TrimSpace(text),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
