package postgresengine

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
)

// FindUser returns the user. Returns circulation.ErrNotFound if the user is unknown.
func (e *Engine) FindUser(ctx context.Context, userID circulation.UserID) (circulation.User, error) {
	obs, ctx := e.observe(ctx, operationFindUser)

	user, err := first(ctx, e, e.db, operationFindUser, e.selectUser(userID, false), scanUser, circulation.ErrNotFound)
	if err != nil {
		obs.failure(err)
		return circulation.User{}, err
	}

	obs.success(logAttrUserID, userID)

	return user, nil
}

// ListUsers returns all registered users ordered by identifier.
func (e *Engine) ListUsers(ctx context.Context) ([]circulation.User, error) {
	return e.listUsers(ctx, operationListUsers, false)
}

// UsersWithActiveLoans returns the users that have at least one active loan, ordered by identifier.
func (e *Engine) UsersWithActiveLoans(ctx context.Context) ([]circulation.User, error) {
	return e.listUsers(ctx, operationUsersWithActiveLoans, true)
}

func (e *Engine) listUsers(ctx context.Context, operation string, withActiveLoansOnly bool) ([]circulation.User, error) {
	obs, ctx := e.observe(ctx, operation)

	users, err := collect(ctx, e, e.db, operation, e.selectUsers(withActiveLoansOnly), scanUser)
	if err != nil {
		obs.failure(err)
		return nil, err
	}

	obs.successWithRows(len(users))

	return users, nil
}
