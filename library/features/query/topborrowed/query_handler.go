package topborrowed

import (
	"context"
	"fmt"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	TopBorrowed(ctx context.Context, windowDays, limit int, now time.Time) ([]circulation.BorrowCount, error)
}

// QueryHandler ranks books and resolves their metadata.
type QueryHandler struct {
	ledger        Ledger
	catalog       shell.MetadataLookup
	lookupTimeout time.Duration
	logger        shell.Logger
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithLogger sets the logger that receives a warning for every dropped row.
func WithLogger(logger shell.Logger) Option {
	return func(h *QueryHandler) {
		h.logger = logger
	}
}

// WithLookupTimeout bounds each catalog lookup. Default: shell.DefaultMetadataTimeout.
func WithLookupTimeout(timeout time.Duration) Option {
	return func(h *QueryHandler) {
		h.lookupTimeout = timeout
	}
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger, catalog shell.MetadataLookup, opts ...Option) QueryHandler {
	handler := QueryHandler{
		ledger:        ledger,
		catalog:       catalog,
		lookupTimeout: shell.DefaultMetadataTimeout,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes Query -> Resolve -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Ranking, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	counts, err := h.ledger.TopBorrowed(ctx, query.WindowDays, query.Limit, query.Now)
	if err != nil {
		return Ranking{}, err
	}

	metadata := make(map[circulation.BookID]circulation.Metadata, len(counts))

	for _, count := range counts {
		m, err := shell.ResolveMetadata(ctx, h.catalog, count.BookID, h.lookupTimeout)
		if err != nil && ctx.Err() != nil {
			return Ranking{}, err
		}

		// a ranked row needs both title and author
		if err == nil && !m.HasAuthor() {
			err = fmt.Errorf("%w: no author for %q", circulation.ErrMetadataUnavailable, count.BookID)
		}

		if err != nil {
			if h.logger != nil {
				h.logger.Warn("ranked book dropped, no catalog metadata",
					"book_id", count.BookID, shell.LogAttrError, err.Error())
			}

			continue
		}

		metadata[count.BookID] = m
	}

	return Project(counts, metadata, query), nil
}
