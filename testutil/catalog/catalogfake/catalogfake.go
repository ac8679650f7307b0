// Package catalogfake provides an in-memory catalog for handler tests.
package catalogfake

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
)

// Catalog answers lookups from a fixed set of records. It is safe for concurrent use.
type Catalog struct {
	mu       sync.Mutex
	records  map[string]circulation.Metadata
	failWith error
	block    bool
	lookups  int
	searches []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{records: make(map[string]circulation.Metadata)}
}

// WithTitle registers a record for id with the given title.
func (c *Catalog) WithTitle(id, title string) *Catalog {
	return c.WithRecord(circulation.Metadata{ISBN: id, Title: title, Author: "Maupassant, Guy de"})
}

// WithRecord registers a record under its ISBN.
func (c *Catalog) WithRecord(metadata circulation.Metadata) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[metadata.ISBN] = metadata

	return c
}

// FailWith makes every call fail with err.
func (c *Catalog) FailWith(err error) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failWith = err

	return c
}

// Block makes every call wait until its context is done.
func (c *Catalog) Block() *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.block = true

	return c
}

// Lookups returns the number of Lookup calls.
func (c *Catalog) Lookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lookups
}

// Searches returns the queries passed to Search.
func (c *Catalog) Searches() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.searches...)
}

// Lookup returns the record registered for id, or catalog.ErrNotFound.
func (c *Catalog) Lookup(ctx context.Context, id string) (circulation.Metadata, error) {
	c.mu.Lock()
	c.lookups++
	failWith, block := c.failWith, c.block
	metadata, ok := c.records[strings.TrimSpace(id)]
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return circulation.Metadata{}, ctx.Err()
	}

	if failWith != nil {
		return circulation.Metadata{}, failWith
	}

	if !ok {
		return circulation.Metadata{}, &catalog.Error{Op: "lookup", Query: id, Err: catalog.ErrNotFound}
	}

	return metadata, nil
}

// Search returns the titled records whose title or author contains query, ignoring case, ordered by ISBN.
func (c *Catalog) Search(ctx context.Context, query string) ([]circulation.Metadata, error) {
	c.mu.Lock()
	c.searches = append(c.searches, query)
	failWith, block := c.failWith, c.block
	records := make([]circulation.Metadata, 0, len(c.records))
	for _, metadata := range c.records {
		records = append(records, metadata)
	}
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if failWith != nil {
		return nil, failWith
	}

	if strings.TrimSpace(query) == "" {
		return nil, catalog.ErrEmptyQuery
	}

	needle := strings.ToLower(query)
	result := make([]circulation.Metadata, 0)

	for _, metadata := range records {
		if !metadata.HasTitle() {
			continue
		}

		if strings.Contains(strings.ToLower(metadata.Title), needle) || strings.Contains(strings.ToLower(metadata.Author), needle) {
			result = append(result, metadata)
		}
	}

	slices.SortFunc(result, func(a, b circulation.Metadata) int {
		return strings.Compare(a.ISBN, b.ISBN)
	})

	return result, nil
}
