package overdueloans

import (
	"context"
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	ListOverdue(ctx context.Context, now time.Time) ([]circulation.OverdueLoan, error)
	CountOverdue(ctx context.Context, now time.Time) (int, error)
}

// QueryHandler reads overdue loans from a replica when one is configured.
type QueryHandler struct {
	ledger Ledger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger) QueryHandler {
	return QueryHandler{
		ledger: ledger,
	}
}

// Handle lists or counts the overdue loans.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueLoans, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	if query.CountOnly {
		count, err := h.ledger.CountOverdue(ctx, query.Now)
		if err != nil {
			return OverdueLoans{}, err
		}

		return OverdueLoans{Loans: []circulation.OverdueLoan{}, Count: count}, nil
	}

	loans, err := h.ledger.ListOverdue(ctx, query.Now)
	if err != nil {
		return OverdueLoans{}, err
	}

	return OverdueLoans{Loans: loans, Count: len(loans)}, nil
}
