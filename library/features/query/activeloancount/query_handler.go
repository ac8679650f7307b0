package activeloancount

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	CountActive(ctx context.Context, userID circulation.UserID) (int, error)
}

// QueryHandler counts active loans.
type QueryHandler struct {
	ledger Ledger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger) QueryHandler {
	return QueryHandler{
		ledger: ledger,
	}
}

// Handle returns the active loan count of the user. A user without loans, or an unknown user, counts 0.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ActiveLoans, error) {
	ctx = circulation.WithStrongConsistency(ctx)

	count, err := h.ledger.CountActive(ctx, query.UserID)
	if err != nil {
		return ActiveLoans{}, err
	}

	return ActiveLoans{
		UserID:    query.UserID,
		Count:     count,
		Remaining: max(circulation.MaxActiveLoans-count, 0),
	}, nil
}
