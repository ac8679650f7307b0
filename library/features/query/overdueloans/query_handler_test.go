package overdueloans_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/query/overdueloans"
	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

func givenOverdueLoans(ledger *memledger.Ledger, now time.Time) (circulation.LoanID, circulation.LoanID) {
	userID := ledger.GivenUser("Durand")

	twentyDaysAgo := ledger.GivenLoan(userID, "a", now.Add(-20*24*time.Hour), false)
	sixteenDaysAgo := ledger.GivenLoan(userID, "b", now.Add(-16*24*time.Hour), false)
	ledger.GivenLoan(userID, "c", now.Add(-30*24*time.Hour), true)
	ledger.GivenLoan(userID, "d", now.Add(-2*24*time.Hour), false)

	return twentyDaysAgo, sixteenDaysAgo
}

func Test_QueryHandler_Handle_ListsOverdueLoansOldestDueDateFirst(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ledger := memledger.New()
	oldest, newer := givenOverdueLoans(ledger, now)

	// act
	result, err := overdueloans.NewQueryHandler(ledger).Handle(ctx, overdueloans.BuildQuery(now))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Loans, 2)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, oldest, result.Loans[0].ID)
	assert.Equal(t, 6, result.Loans[0].DaysLate)
	assert.Equal(t, newer, result.Loans[1].ID)
	assert.Equal(t, 2, result.Loans[1].DaysLate)
}

func Test_QueryHandler_Handle_CountOnly(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ledger := memledger.New()
	givenOverdueLoans(ledger, now)

	// act
	result, err := overdueloans.NewQueryHandler(ledger).Handle(ctx, overdueloans.BuildCountQuery(now))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Empty(t, result.Loans)
}

func Test_QueryHandler_Handle_DueExactlyNow_IsNotOverdue(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ledger := memledger.New()
	userID := ledger.GivenUser("Durand")
	ledger.GivenLoan(userID, "a", now.Add(-circulation.LoanPeriod), false)

	// act
	result, err := overdueloans.NewQueryHandler(ledger).Handle(ctx, overdueloans.BuildQuery(now))

	// assert
	require.NoError(t, err)
	assert.Zero(t, result.Count)
}

func Test_QueryHandler_Handle_LoanDueTenDaysAgo_IsTenDaysLate(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ledger := memledger.New()
	userID := ledger.GivenUser("Durand")
	loanID := ledger.GivenLoan(userID, "978-1", now.Add(-10*24*time.Hour-circulation.LoanPeriod), false)

	// act
	result, err := overdueloans.NewQueryHandler(ledger).Handle(ctx, overdueloans.BuildQuery(now))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Loans, 1)
	assert.Equal(t, loanID, result.Loans[0].ID)
	assert.Equal(t, 10, result.Loans[0].DaysLate)
}
