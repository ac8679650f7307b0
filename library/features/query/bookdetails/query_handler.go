package bookdetails

import (
	"context"
	"errors"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	FindBook(ctx context.Context, bookID circulation.BookID) (circulation.Book, error)
	RecentLoanCount(ctx context.Context, bookID circulation.BookID, windowDays int, now time.Time) (int, error)
}

// QueryHandler describes books.
type QueryHandler struct {
	ledger        Ledger
	catalog       shell.MetadataLookup
	lookupTimeout time.Duration
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger, catalog shell.MetadataLookup) QueryHandler {
	return QueryHandler{
		ledger:        ledger,
		catalog:       catalog,
		lookupTimeout: shell.DefaultMetadataTimeout,
	}
}

// Handle returns circulation.ErrNotFound only when neither the inventory nor the catalog knows the book.
// A held book the catalog cannot describe is returned without metadata.
func (h QueryHandler) Handle(ctx context.Context, query Query) (BookDetails, error) {
	if query.BookID == "" {
		return BookDetails{}, circulation.ErrInvalidArgument
	}

	ctx = circulation.WithEventualConsistency(ctx)

	details := BookDetails{
		BookID:     query.BookID,
		WindowDays: query.WindowDays,
	}

	book, err := h.ledger.FindBook(ctx, query.BookID)
	switch {
	case err == nil:
		details.InInventory = true
		details.Stock = book.Stock
	case !errors.Is(err, circulation.ErrNotFound):
		return BookDetails{}, err
	}

	details.Availability = shell.AvailabilityLabel(book, details.InInventory)

	metadata, err := shell.ResolveMetadata(ctx, h.catalog, query.BookID, h.lookupTimeout)
	switch {
	case err == nil:
		details.Metadata = metadata
	case ctx.Err() != nil:
		return BookDetails{}, err
	case !details.InInventory:
		return BookDetails{}, circulation.ErrNotFound
	}

	if details.InInventory {
		details.RecentLoans, err = h.ledger.RecentLoanCount(ctx, query.BookID, query.WindowDays, query.Now)
		if err != nil {
			return BookDetails{}, err
		}
	}

	return details, nil
}
