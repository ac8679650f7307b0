package postgresengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	. "github.com/alexandrebha/cybook/testutil/postgresengine/helper/postgreswrapper" //nolint:revive
)

var fakeNow = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

func borrowInTx(ctx context.Context, tx circulation.LedgerTx, userID circulation.UserID, bookID circulation.BookID, now time.Time) error {
	if _, err := tx.LockUser(ctx, userID); err != nil {
		return err
	}

	if _, err := tx.LockBook(ctx, bookID); err != nil {
		return err
	}

	if err := tx.Decrement(ctx, bookID); err != nil {
		return err
	}

	_, err := tx.InsertLoan(ctx, userID, bookID, now)

	return err
}

func Test_CreateTables_IsIdempotent(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()

	// act
	err := engine.CreateTables(context.Background())

	// assert
	assert.NoError(t, err)
}

func Test_GetStock(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "978-1", 2)

	// act
	stock, err := engine.GetStock(context.Background(), "978-1")
	_, unknownErr := engine.GetStock(context.Background(), "unknown")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
	assert.ErrorIs(t, unknownErr, circulation.ErrNotFound)
}

func Test_Upsert_InsertsThenIncrements(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx := context.Background()

	// act
	first, firstErr := engine.Upsert(ctx, "978-2")
	second, secondErr := engine.Upsert(ctx, "978-2")

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, 2, StockFromDB(t, wrapper, "978-2"))
}

func Test_GetAllBooks_AndFindBook(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "b", 0)
	GivenBookWithStock(t, wrapper, "a", 3)

	// act
	books, err := engine.GetAllBooks(context.Background())
	book, findErr := engine.FindBook(context.Background(), "a")
	_, missingErr := engine.FindBook(context.Background(), "zzz")

	// assert
	require.NoError(t, err)
	assert.Equal(t, []circulation.Book{{ID: "a", Stock: 3}, {ID: "b", Stock: 0}}, books)
	require.NoError(t, findErr)
	assert.Equal(t, circulation.Book{ID: "a", Stock: 3}, book)
	assert.ErrorIs(t, missingErr, circulation.ErrNotFound)
}

func Test_Borrow_InTx_DecrementsStock_AndCreatesLoan(t *testing.T) {
	// scenario A: stock 2, one borrow, stock 1 and an active loan due 14 days later

	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx := context.Background()
	GivenBookWithStock(t, wrapper, "978-1", 2)
	userID := GivenUser(t, wrapper, "Durand")

	// act
	err := engine.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		return borrowInTx(ctx, tx, userID, "978-1", fakeNow)
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, StockFromDB(t, wrapper, "978-1"))

	loans, listErr := engine.LoansByUser(ctx, userID, true)
	require.NoError(t, listErr)
	require.Len(t, loans, 1)
	assert.True(t, loans[0].LoanDate.Equal(fakeNow))
	assert.True(t, loans[0].DueDate.Equal(fakeNow.Add(circulation.LoanPeriod)))
	assert.False(t, loans[0].Returned)
}

func Test_WithinTx_RollsBackEverything_OnError(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "978-1", 1)
	userID := GivenUser(t, wrapper, "Durand")
	errAbort := errors.New("abort")

	// act
	err := engine.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		if borrowErr := borrowInTx(ctx, tx, userID, "978-1", fakeNow); borrowErr != nil {
			return borrowErr
		}

		return errAbort
	})

	// assert
	assert.ErrorIs(t, err, errAbort)
	assert.Equal(t, 1, StockFromDB(t, wrapper, "978-1"))
	assert.Equal(t, 0, ActiveLoansFromDB(t, wrapper, userID))
}

func Test_Decrement_AtZero_IsOutOfStock(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "978-1", 0)

	// act
	err := engine.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		return tx.Decrement(ctx, "978-1")
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrOutOfStock)
	assert.Equal(t, 0, StockFromDB(t, wrapper, "978-1"))
}

func Test_InsertLoan_ForUnknownUser_IsNotFound(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "978-1", 1)

	// act
	err := engine.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		_, insertErr := tx.InsertLoan(ctx, 999, "978-1", fakeNow)
		return insertErr
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrNotFound)
}

func Test_ConcurrentBorrows_OfTheLastCopy_ExactlyOneSucceeds(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "978-1", 1)

	const borrowers = 8
	userIDs := make([]circulation.UserID, borrowers)
	for i := range userIDs {
		userIDs[i] = GivenUser(t, wrapper, "Reader")
	}

	var wg sync.WaitGroup
	results := make([]error, borrowers)

	// act
	for i := 0; i < borrowers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			results[i] = engine.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
				return borrowInTx(ctx, tx, userIDs[i], "978-1", fakeNow)
			})
		}(i)
	}

	wg.Wait()

	// assert
	successes, outOfStock := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, circulation.ErrOutOfStock):
			outOfStock++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, borrowers-1, outOfStock)
	assert.Equal(t, 0, StockFromDB(t, wrapper, "978-1"))
}

func Test_LatestActiveLoan_ResolvesTheLatestDueDate(t *testing.T) {
	// scenario E: two active loans for the same (user, book), only the later one is returned

	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx := context.Background()
	GivenBookWithStock(t, wrapper, "978-1", 0)
	userID := GivenUser(t, wrapper, "Durand")
	earlierID := GivenLoan(t, wrapper, userID, "978-1", fakeNow.Add(-10*24*time.Hour), false)
	laterID := GivenLoan(t, wrapper, userID, "978-1", fakeNow.Add(-2*24*time.Hour), false)

	// act
	var returned circulation.Loan
	err := engine.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		loan, findErr := tx.LatestActiveLoan(ctx, userID, "978-1")
		if findErr != nil {
			return findErr
		}

		returned = loan

		if markErr := tx.MarkReturned(ctx, loan.ID); markErr != nil {
			return markErr
		}

		return tx.Increment(ctx, "978-1")
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, laterID, returned.ID)

	active, listErr := engine.LoansByUser(ctx, userID, true)
	require.NoError(t, listErr)
	require.Len(t, active, 1)
	assert.Equal(t, earlierID, active[0].ID)
	assert.Equal(t, 1, StockFromDB(t, wrapper, "978-1"))
}

func Test_LatestActiveLoan_WithoutActiveLoan_IsNoActiveLoan(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "978-1", 1)
	userID := GivenUser(t, wrapper, "Durand")
	GivenLoan(t, wrapper, userID, "978-1", fakeNow.Add(-24*time.Hour), true)

	// act
	err := engine.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		_, findErr := tx.LatestActiveLoan(ctx, userID, "978-1")
		return findErr
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrNoActiveLoan)
}

func Test_CountActive(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	GivenBookWithStock(t, wrapper, "978-1", 5)
	userID := GivenUser(t, wrapper, "Durand")
	GivenLoan(t, wrapper, userID, "978-1", fakeNow, false)
	GivenLoan(t, wrapper, userID, "978-1", fakeNow, false)
	GivenLoan(t, wrapper, userID, "978-1", fakeNow, true)

	// act
	count, err := engine.CountActive(context.Background(), userID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func Test_ListOverdue_AndCountOverdue(t *testing.T) {
	// scenario C: loan due 10 days ago, not returned, is 10 days late

	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx := context.Background()
	GivenBookWithStock(t, wrapper, "978-1", 5)
	userID := GivenUser(t, wrapper, "Durand")
	overdueID := GivenLoan(t, wrapper, userID, "978-1", fakeNow.Add(-24*24*time.Hour), false)
	GivenLoan(t, wrapper, userID, "978-1", fakeNow.Add(-30*24*time.Hour), true) // returned
	GivenLoan(t, wrapper, userID, "978-1", fakeNow.Add(-2*24*time.Hour), false) // not due yet

	// act
	overdue, err := engine.ListOverdue(ctx, fakeNow)
	count, countErr := engine.CountOverdue(ctx, fakeNow)

	// assert
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, overdueID, overdue[0].ID)
	assert.Equal(t, 10, overdue[0].DaysLate)
	require.NoError(t, countErr)
	assert.Equal(t, 1, count)
}

func Test_TopBorrowed_RanksByCountWithinWindow(t *testing.T) {
	// scenario D: three loans of 978-2 and one of 978-3 in the window

	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx := context.Background()
	GivenBookWithStock(t, wrapper, "978-2", 5)
	GivenBookWithStock(t, wrapper, "978-3", 5)
	GivenBookWithStock(t, wrapper, "978-4", 5)
	userID := GivenUser(t, wrapper, "Durand")
	GivenLoan(t, wrapper, userID, "978-2", fakeNow.Add(-1*24*time.Hour), true)
	GivenLoan(t, wrapper, userID, "978-2", fakeNow.Add(-5*24*time.Hour), false)
	GivenLoan(t, wrapper, userID, "978-2", fakeNow.Add(-20*24*time.Hour), true)
	GivenLoan(t, wrapper, userID, "978-3", fakeNow.Add(-3*24*time.Hour), false)
	GivenLoan(t, wrapper, userID, "978-4", fakeNow.Add(-45*24*time.Hour), true) // outside the window

	// act
	ranking, err := engine.TopBorrowed(ctx, 30, 3, fakeNow)
	recent, recentErr := engine.RecentLoanCount(ctx, "978-2", 30, fakeNow)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []circulation.BorrowCount{{BookID: "978-2", Count: 3}, {BookID: "978-3", Count: 1}}, ranking)
	require.NoError(t, recentErr)
	assert.Equal(t, 3, recent)
}

func Test_Users_InsertUpdateAndList(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx := context.Background()
	GivenBookWithStock(t, wrapper, "978-1", 1)
	borrowerID := GivenUser(t, wrapper, "Martin")
	GivenLoan(t, wrapper, borrowerID, "978-1", fakeNow, false)

	user := circulation.User{LastName: "Durand", FirstName: "Léa", Email: "lea@example.org", Address: "1 rue Haute", Phone: "0601020304"}

	// act
	var newID circulation.UserID
	insertErr := engine.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		var err error
		newID, err = tx.InsertUser(ctx, user)

		return err
	})

	user.ID = newID
	user.Address = "2 rue Basse"
	updateErr := engine.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		return tx.UpdateUser(ctx, user)
	})

	missingErr := engine.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		return tx.UpdateUser(ctx, circulation.User{ID: 12345, LastName: "X"})
	})

	// assert
	require.NoError(t, insertErr)
	require.NoError(t, updateErr)
	assert.ErrorIs(t, missingErr, circulation.ErrNotFound)

	found, findErr := engine.FindUser(ctx, newID)
	require.NoError(t, findErr)
	assert.Equal(t, user, found)

	all, listErr := engine.ListUsers(ctx)
	require.NoError(t, listErr)
	assert.Len(t, all, 2)

	borrowers, borrowersErr := engine.UsersWithActiveLoans(ctx)
	require.NoError(t, borrowersErr)
	require.Len(t, borrowers, 1)
	assert.Equal(t, borrowerID, borrowers[0].ID)
}

func Test_Journal_AppendAndRead(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx := context.Background()

	borrowed, err := circulation.BuildJournalEntryWithEmptyMetadata("BookBorrowed", fakeNow, []byte(`{"userID": 1, "bookID": "978-1"}`))
	require.NoError(t, err)
	returned, err := circulation.BuildJournalEntryWithEmptyMetadata("BookReturned", fakeNow.Add(time.Hour), []byte(`{"userID": 2, "bookID": "978-1"}`))
	require.NoError(t, err)

	// act
	appendErr := engine.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		if err := tx.AppendJournal(ctx, borrowed); err != nil {
			return err
		}

		return tx.AppendJournal(ctx, returned)
	})

	all, readAllErr := engine.ReadJournal(ctx, circulation.JournalFilter{})
	ofUser, readUserErr := engine.ReadJournal(ctx, circulation.JournalFilter{UserID: 1})

	// assert
	require.NoError(t, appendErr)
	require.NoError(t, readAllErr)
	require.Len(t, all, 2)
	assert.Equal(t, "BookReturned", all[0].EntryType, "newest first")
	assert.True(t, all[1].OccurredAt.Equal(fakeNow))

	require.NoError(t, readUserErr)
	require.Len(t, ofUser, 1)
	assert.Equal(t, "BookBorrowed", ofUser[0].EntryType)
	assert.JSONEq(t, `{"userID": 1, "bookID": "978-1"}`, string(ofUser[0].PayloadJSON))
	assert.Equal(t, 2, JournalEntriesFromDB(t, wrapper, "BookBorrowed")+JournalEntriesFromDB(t, wrapper, "BookReturned"))
}

func Test_Context_Canceled_IsNotSwallowed(t *testing.T) {
	// arrange
	wrapper := CreateWrapperWithTestConfig(t)
	engine := wrapper.GetEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := engine.GetAllBooks(ctx)

	// assert
	assert.Error(t, err)
	assert.ErrorIs(t, err, circulation.ErrStoreUnavailable)
}
