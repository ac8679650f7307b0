package memledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

func Test_WithinTx_RollsBackOnError(t *testing.T) {
	// arrange
	ledger := memledger.New()
	ledger.GivenBookWithStock("978-1", 2)
	userID := ledger.GivenUser("Hugo")

	// act
	err := ledger.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		require.NoError(t, tx.Decrement(ctx, "978-1"))
		_, insertErr := tx.InsertLoan(ctx, userID, "978-1", time.Now())
		require.NoError(t, insertErr)

		return errors.New("abort")
	})

	// assert
	assert.Error(t, err)
	stock, _ := ledger.Stock("978-1")
	assert.Equal(t, 2, stock)
	assert.Empty(t, ledger.Loans())
}

func Test_WithinTx_RollsBackOnPanic(t *testing.T) {
	// arrange
	ledger := memledger.New()
	ledger.GivenBookWithStock("978-1", 2)
	userID := ledger.GivenUser("Hugo")

	// act
	assert.PanicsWithValue(t, "boom", func() {
		_ = ledger.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
			require.NoError(t, tx.Decrement(ctx, "978-1"))
			_, insertErr := tx.InsertLoan(ctx, userID, "978-1", time.Now())
			require.NoError(t, insertErr)

			panic("boom")
		})
	})

	// assert
	stock, found := ledger.Stock("978-1")
	require.True(t, found)
	assert.Equal(t, 2, stock)
	assert.Empty(t, ledger.Loans())
	assert.NoError(t, ledger.WithinTx(context.Background(), func(context.Context, circulation.LedgerTx) error { return nil }))
}

func Test_LatestActiveLoan_PicksLatestDueDate(t *testing.T) {
	// arrange
	ledger := memledger.New()
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	userID := ledger.GivenUser("Hugo")
	ledger.GivenBookWithStock("978-1", 0)
	ledger.GivenLoan(userID, "978-1", now.Add(-5*24*time.Hour), false)
	laterID := ledger.GivenLoan(userID, "978-1", now.Add(-1*24*time.Hour), false)

	// act
	var loan circulation.Loan
	err := ledger.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		var txErr error
		loan, txErr = tx.LatestActiveLoan(ctx, userID, "978-1")
		return txErr
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, laterID, loan.ID)
}

func Test_InjectError_FailsTheNextCalls(t *testing.T) {
	// arrange
	ledger := memledger.New()
	ledger.InjectError(memledger.OpWithinTx, circulation.ErrConcurrencyConflict, 2)
	noop := func(context.Context, circulation.LedgerTx) error { return nil }

	// act / assert
	assert.ErrorIs(t, ledger.WithinTx(context.Background(), noop), circulation.ErrConcurrencyConflict)
	assert.ErrorIs(t, ledger.WithinTx(context.Background(), noop), circulation.ErrConcurrencyConflict)
	assert.NoError(t, ledger.WithinTx(context.Background(), noop))
	assert.Equal(t, 1, ledger.TxCount())
}

func Test_TopBorrowed_OrdersByCountThenBookID(t *testing.T) {
	// arrange
	ledger := memledger.New()
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	userID := ledger.GivenUser("Hugo")
	for _, bookID := range []string{"978-3", "978-2", "978-2", "978-1", "978-2", "978-1"} {
		ledger.GivenLoan(userID, bookID, now.Add(-time.Hour), true)
	}
	ledger.GivenLoan(userID, "978-9", now.Add(-40*24*time.Hour), true)

	// act
	ranking, err := ledger.TopBorrowed(context.Background(), 30, 3, now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []circulation.BorrowCount{
		{BookID: "978-2", Count: 3},
		{BookID: "978-1", Count: 2},
		{BookID: "978-3", Count: 1},
	}, ranking)
}
