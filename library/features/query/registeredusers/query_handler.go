package registeredusers

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	ListUsers(ctx context.Context) ([]circulation.User, error)
	UsersWithActiveLoans(ctx context.Context) ([]circulation.User, error)
}

// QueryHandler lists users.
type QueryHandler struct {
	ledger Ledger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger) QueryHandler {
	return QueryHandler{
		ledger: ledger,
	}
}

// Handle lists the users.
func (h QueryHandler) Handle(ctx context.Context, query Query) (RegisteredUsers, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	list := h.ledger.ListUsers
	if query.ActiveLoansOnly {
		list = h.ledger.UsersWithActiveLoans
	}

	users, err := list(ctx)
	if err != nil {
		return RegisteredUsers{}, err
	}

	return RegisteredUsers{Users: users, Count: len(users)}, nil
}
