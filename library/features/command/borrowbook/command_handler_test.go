package borrowbook_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/command/borrowbook"
	"github.com/alexandrebha/cybook/library/features/command/returnbook"
	"github.com/alexandrebha/cybook/library/shared/core"
	"github.com/alexandrebha/cybook/library/shared/shell"
	"github.com/alexandrebha/cybook/testutil/catalog/catalogfake"
	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

const belAmi = "9782070360024"

func fastRetries() borrowbook.Option {
	return borrowbook.WithRetryOptions(shell.WithBaseDelay(time.Millisecond), shell.WithJitterFactor(0))
}

func Test_CommandHandler_Handle_BorrowsOneCopy(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 2)
	userID := ledger.GivenUser("Durand")
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New().WithTitle(belAmi, "Bel-Ami"), fastRetries())

	// act
	result, err := handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, now))

	// assert
	require.NoError(t, err)
	assert.NotZero(t, result.LoanID)
	assert.Equal(t, 1, result.Stock)
	assert.Equal(t, 1, result.RetryAttempts)

	stock, _ := ledger.Stock(belAmi)
	assert.Equal(t, 1, stock)

	loans := ledger.Loans()
	require.Len(t, loans, 1)
	assert.Equal(t, result.LoanID, loans[0].ID)
	assert.Equal(t, now.Add(circulation.LoanPeriod), loans[0].DueDate)
	assert.True(t, loans[0].IsActive())

	entries := ledger.JournalEntriesOfType(core.BookBorrowedEventType)
	require.Len(t, entries, 1)

	event, err := shell.DomainEventFrom(entries[0])
	require.NoError(t, err)
	assert.Equal(t, result.LoanID, event.(core.BookBorrowed).LoanID)
	assert.Equal(t, "Bel-Ami", event.(core.BookBorrowed).Title)
}

func Test_CommandHandler_Handle_UserAtLimit_FailsBeforeCatalogLookup(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Now()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 5)
	userID := ledger.GivenUser("Durand")
	for _, bookID := range []string{"a", "b", "c"} {
		ledger.GivenLoan(userID, bookID, now.Add(-time.Hour), false)
	}
	catalog := catalogfake.New().WithTitle(belAmi, "Bel-Ami")
	handler := borrowbook.NewCommandHandler(ledger, catalog, fastRetries())

	// act
	_, err := handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, now))

	// assert
	assert.ErrorIs(t, err, circulation.ErrLimitExceeded)
	assert.Zero(t, catalog.Lookups())
	assert.Zero(t, ledger.TxCount())

	stock, _ := ledger.Stock(belAmi)
	assert.Equal(t, 5, stock)
}

func Test_CommandHandler_Handle_OutOfStock_JournalsTheRejection(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 0)
	userID := ledger.GivenUser("Durand")
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New().WithTitle(belAmi, "Bel-Ami"), fastRetries())

	// act
	_, err := handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, time.Now()))

	// assert
	assert.ErrorIs(t, err, circulation.ErrOutOfStock)
	assert.Empty(t, ledger.Loans())
	assert.Len(t, ledger.JournalEntriesOfType(core.BorrowingBookFailedEventType), 1)
	assert.Empty(t, ledger.JournalEntriesOfType(core.BookBorrowedEventType))
}

func Test_CommandHandler_Handle_UnknownUser(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New().WithTitle(belAmi, "Bel-Ami"), fastRetries())

	// act
	_, err := handler.Handle(ctx, borrowbook.BuildCommand(999, belAmi, time.Now()))

	// assert
	assert.ErrorIs(t, err, circulation.ErrNotFound)

	stock, _ := ledger.Stock(belAmi)
	assert.Equal(t, 1, stock)
}

func Test_CommandHandler_Handle_UntitledBook_IsRejectedWithoutTouchingTheStore(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)
	userID := ledger.GivenUser("Durand")
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New(), fastRetries())

	// act
	_, err := handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, time.Now()))

	// assert
	assert.ErrorIs(t, err, circulation.ErrMetadataUnavailable)
	assert.Zero(t, ledger.TxCount())
	assert.Zero(t, ledger.JournalLength())
}

func Test_CommandHandler_Handle_CatalogTimeout(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)
	userID := ledger.GivenUser("Durand")
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New().Block(), fastRetries(),
		borrowbook.WithLookupTimeout(20*time.Millisecond))

	// act
	_, err := handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, time.Now()))

	// assert
	assert.ErrorIs(t, err, circulation.ErrMetadataUnavailable)
	assert.Equal(t, "rejected", shell.StatusFor(err))

	stock, _ := ledger.Stock(belAmi)
	assert.Equal(t, 1, stock)
}

func Test_CommandHandler_Handle_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)
	userID := ledger.GivenUser("Durand")
	ledger.InjectError(memledger.OpWithinTx, circulation.ErrConcurrencyConflict, 2)
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New().WithTitle(belAmi, "Bel-Ami"), fastRetries())

	// act
	result, err := handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, time.Now()))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Len(t, ledger.Loans(), 1)
}

func Test_CommandHandler_Handle_FailedLoanInsert_RollsBackTheDecrement(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)
	userID := ledger.GivenUser("Durand")
	insertErr := errors.New("disk full")
	ledger.InjectError(memledger.OpInsertLoan, insertErr, 1)
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New().WithTitle(belAmi, "Bel-Ami"), fastRetries())

	// act
	_, err := handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, time.Now()))

	// assert
	assert.ErrorIs(t, err, insertErr)

	stock, _ := ledger.Stock(belAmi)
	assert.Equal(t, 1, stock)
	assert.Empty(t, ledger.Loans())
	assert.Zero(t, ledger.JournalLength())
}

func Test_CommandHandler_Handle_ConcurrentBorrowsOfTheLastCopy(t *testing.T) {
	// arrange
	const borrowers = 8
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)
	handler := borrowbook.NewCommandHandler(ledger, catalogfake.New().WithTitle(belAmi, "Bel-Ami"), fastRetries())

	userIDs := make([]circulation.UserID, borrowers)
	for i := range userIDs {
		userIDs[i] = ledger.GivenUser("Reader")
	}

	errs := make([]error, borrowers)
	var wg sync.WaitGroup

	// act
	for i, userID := range userIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = handler.Handle(ctx, borrowbook.BuildCommand(userID, belAmi, time.Now()))
		}()
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, circulation.ErrOutOfStock)
	}

	assert.Equal(t, 1, succeeded)
	assert.Len(t, ledger.Loans(), 1)

	stock, _ := ledger.Stock(belAmi)
	assert.Equal(t, 0, stock)
}

func Test_CommandHandler_Handle_RandomBorrowsAndReturns_KeepInvariants(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(7, 7))

	ledger := memledger.New()
	catalog := catalogfake.New()
	copies := map[circulation.BookID]int{belAmi: 2, "9782253004226": 1, "9782070413119": 3}
	bookIDs := []circulation.BookID{belAmi, "9782253004226", "9782070413119"}
	for _, bookID := range bookIDs {
		ledger.GivenBookWithStock(bookID, copies[bookID])
		catalog.WithTitle(bookID, "Title "+bookID)
	}

	var userIDs []circulation.UserID
	for _, name := range []string{"Durand", "Petit", "Moreau", "Simon"} {
		userIDs = append(userIDs, ledger.GivenUser(name))
	}

	borrow := borrowbook.NewCommandHandler(ledger, catalog, fastRetries())
	giveBack := returnbook.NewCommandHandler(ledger)

	for step := range 400 {
		userID := userIDs[rng.IntN(len(userIDs))]
		bookID := bookIDs[rng.IntN(len(bookIDs))]
		now = now.Add(time.Hour)

		// act
		var err error
		if rng.IntN(2) == 0 {
			_, err = borrow.Handle(ctx, borrowbook.BuildCommand(userID, bookID, now))
		} else {
			_, err = giveBack.Handle(ctx, returnbook.BuildCommand(userID, bookID, now))
		}

		// assert
		if err != nil {
			require.True(t, shell.IsDomainRejection(err), "step %d: unexpected error %v", step, err)
		}

		for _, id := range userIDs {
			require.LessOrEqual(t, ledger.ActiveLoans(id), circulation.MaxActiveLoans, "step %d: user %d", step, id)
		}

		activeByBook := make(map[circulation.BookID]int)
		for _, loan := range ledger.Loans() {
			if loan.IsActive() {
				activeByBook[loan.BookID]++
			}
		}

		for _, id := range bookIDs {
			stock, found := ledger.Stock(id)
			require.True(t, found)
			require.GreaterOrEqual(t, stock, 0, "step %d: book %s", step, id)
			require.Equal(t, copies[id], stock+activeByBook[id], "step %d: book %s", step, id)
		}
	}
}
