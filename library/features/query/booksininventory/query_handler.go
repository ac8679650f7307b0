package booksininventory

import (
	"context"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	GetAllBooks(ctx context.Context) ([]circulation.Book, error)
}

// QueryHandler lists the inventory.
type QueryHandler struct {
	ledger        Ledger
	catalog       shell.MetadataLookup
	lookupTimeout time.Duration
}

// NewQueryHandler creates a new QueryHandler. catalog may be nil when metadata is never requested.
func NewQueryHandler(ledger Ledger, catalog shell.MetadataLookup) QueryHandler {
	return QueryHandler{
		ledger:        ledger,
		catalog:       catalog,
		lookupTimeout: shell.DefaultMetadataTimeout,
	}
}

// Handle executes Query -> Resolve -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (BooksInInventory, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	books, err := h.ledger.GetAllBooks(ctx)
	if err != nil {
		return BooksInInventory{}, err
	}

	var metadata map[circulation.BookID]circulation.Metadata

	if query.WithMetadata {
		metadata = make(map[circulation.BookID]circulation.Metadata, len(books))

		for _, book := range books {
			m, err := shell.ResolveMetadata(ctx, h.catalog, book.ID, h.lookupTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return BooksInInventory{}, err
				}
				continue
			}

			metadata[book.ID] = m
		}
	}

	return Project(books, metadata), nil
}
