package loansbyuser

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	LoansByUser(ctx context.Context, userID circulation.UserID, activeOnly bool) ([]circulation.Loan, error)
}

// QueryHandler lists loans.
type QueryHandler struct {
	ledger Ledger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger) QueryHandler {
	return QueryHandler{
		ledger: ledger,
	}
}

// Handle lists the loans and flags the overdue ones.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Loans, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	loans, err := h.ledger.LoansByUser(ctx, query.UserID, query.ActiveOnly)
	if err != nil {
		return Loans{}, err
	}

	infos := make([]LoanInfo, 0, len(loans))
	for _, loan := range loans {
		infos = append(infos, LoanInfo{
			Loan:     loan,
			Overdue:  loan.IsOverdue(query.Now),
			DaysLate: circulation.DaysLate(loan.DueDate, query.Now),
		})
	}

	return Loans{
		UserID: query.UserID,
		Loans:  infos,
		Count:  len(infos),
	}, nil
}
