package catalogsearch

import (
	"github.com/alexandrebha/cybook/circulation"
)

// Hit is one catalog record with the local shelf status of its ISBN.
type Hit struct {
	Metadata     circulation.Metadata
	InInventory  bool
	Availability string
}

// SearchResult represents the query result, in catalog order.
type SearchResult struct {
	Query string
	Hits  []Hit
	Count int
}
