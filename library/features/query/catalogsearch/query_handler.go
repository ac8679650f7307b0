package catalogsearch

import (
	"context"
	"errors"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// DefaultSearchTimeout bounds a whole catalog search.
const DefaultSearchTimeout = 10 * time.Second

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	FindBook(ctx context.Context, bookID circulation.BookID) (circulation.Book, error)
}

// QueryHandler searches the catalog, then reads the stock of every hit.
type QueryHandler struct {
	ledger  Ledger
	catalog shell.MetadataSearch
	timeout time.Duration
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithTimeout bounds the catalog search. Default: DefaultSearchTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(h *QueryHandler) {
		h.timeout = timeout
	}
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger, catalog shell.MetadataSearch, opts ...Option) QueryHandler {
	handler := QueryHandler{
		ledger:  ledger,
		catalog: catalog,
		timeout: DefaultSearchTimeout,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle returns catalog errors unchanged, so callers can tell an empty query from an unreachable catalog.
func (h QueryHandler) Handle(ctx context.Context, query Query) (SearchResult, error) {
	searchCtx, cancel := context.WithTimeout(ctx, h.timeout)
	records, err := h.catalog.Search(searchCtx, query.Text)
	cancel()

	if err != nil {
		return SearchResult{}, err
	}

	ctx = circulation.WithEventualConsistency(ctx)

	result := SearchResult{
		Query: query.Text,
		Hits:  make([]Hit, 0, len(records)),
	}

	for _, record := range records {
		hit := Hit{Metadata: record}

		if record.ISBN != "" {
			book, err := h.ledger.FindBook(ctx, record.ISBN)
			switch {
			case err == nil:
				hit.InInventory = true
			case !errors.Is(err, circulation.ErrNotFound):
				return SearchResult{}, err
			}

			hit.Availability = shell.AvailabilityLabel(book, hit.InInventory)
		} else {
			hit.Availability = shell.LabelNotAvailable
		}

		result.Hits = append(result.Hits, hit)
	}

	result.Count = len(result.Hits)

	return result, nil
}
