package postgresengine

import (
	"context"
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// CountActive returns the number of loans of the user that are not returned.
// An unknown user has zero active loans.
func (e *Engine) CountActive(ctx context.Context, userID circulation.UserID) (int, error) {
	obs, ctx := e.observe(ctx, operationCountActive)

	count, err := first(ctx, e, e.db, operationCountActive, e.countActiveLoans(userID), scanCount, circulation.ErrStoreUnavailable)
	if err != nil {
		obs.failure(err)
		return 0, err
	}

	obs.success(logAttrUserID, userID, logAttrCount, count)

	return count, nil
}

// ListOverdue returns the active loans whose due date lies before now, oldest due date first,
// each annotated with the whole days it is late.
func (e *Engine) ListOverdue(ctx context.Context, now time.Time) ([]circulation.OverdueLoan, error) {
	obs, ctx := e.observe(ctx, operationListOverdue)

	loans, err := collect(ctx, e, e.db, operationListOverdue, e.selectOverdueLoans(circulation.ToStoreTime(now)), scanLoan)
	if err != nil {
		obs.failure(err)
		return nil, err
	}

	overdue := make([]circulation.OverdueLoan, 0, len(loans))
	for _, loan := range loans {
		overdue = append(overdue, circulation.BuildOverdueLoan(loan, now))
	}

	obs.successWithRows(len(overdue))

	return overdue, nil
}

// CountOverdue returns the number of active loans whose due date lies before now.
func (e *Engine) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	obs, ctx := e.observe(ctx, operationCountOverdue)

	count, err := first(ctx, e, e.db, operationCountOverdue, e.countOverdueLoans(circulation.ToStoreTime(now)), scanCount, circulation.ErrStoreUnavailable)
	if err != nil {
		obs.failure(err)
		return 0, err
	}

	obs.success(logAttrCount, count)

	return count, nil
}

// LoansByUser returns the loans of the user, newest first. A zero userID returns the loans of all users.
func (e *Engine) LoansByUser(ctx context.Context, userID circulation.UserID, activeOnly bool) ([]circulation.Loan, error) {
	obs, ctx := e.observe(ctx, operationLoansByUser)

	loans, err := collect(ctx, e, e.db, operationLoansByUser, e.selectLoans(userID, activeOnly), scanLoan)
	if err != nil {
		obs.failure(err)
		return nil, err
	}

	obs.successWithRows(len(loans), logAttrUserID, userID)

	return loans, nil
}
