package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/postgresengine/internal/adapters"
)

const (
	actionLockUser         = "lock user"
	actionCountActiveLoans = "count active loans"
	actionLockBook         = "lock book"
	actionFindBook         = "find book"
	actionDecrement        = "decrement stock"
	actionIncrement        = "increment stock"
	actionUpsert           = "upsert book"
	actionInsertLoan       = "insert loan"
	actionLatestActiveLoan = "lock latest active loan"
	actionMarkReturned     = "mark loan returned"
	actionInsertUser       = "insert user"
	actionUpdateUser       = "update user"
	actionAppendJournal    = "append journal entry"
)

// ledgerTx implements circulation.LedgerTx on top of one open database transaction.
type ledgerTx struct {
	engine *Engine
	tx     adapters.DBTx
}

var _ circulation.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) LockUser(ctx context.Context, userID circulation.UserID) (circulation.User, error) {
	return first(ctx, t.engine, t.tx, actionLockUser, t.engine.selectUser(userID, true), scanUser, circulation.ErrNotFound)
}

func (t *ledgerTx) CountActiveLoans(ctx context.Context, userID circulation.UserID) (int, error) {
	return first(ctx, t.engine, t.tx, actionCountActiveLoans, t.engine.countActiveLoans(userID), scanCount, circulation.ErrStoreUnavailable)
}

func (t *ledgerTx) LockBook(ctx context.Context, bookID circulation.BookID) (circulation.Book, error) {
	return first(ctx, t.engine, t.tx, actionLockBook, t.engine.selectBook(bookID, true), scanBook, circulation.ErrNotFound)
}

// Decrement tells an empty shelf from an unknown book by reading the row when the conditional update matched nothing.
func (t *ledgerTx) Decrement(ctx context.Context, bookID circulation.BookID) error {
	rowsAffected, err := t.engine.execute(ctx, t.tx, actionDecrement, t.engine.decrementStock(bookID))
	if err != nil {
		return err
	}

	if rowsAffected == 1 {
		return nil
	}

	if _, findErr := first(ctx, t.engine, t.tx, actionFindBook, t.engine.selectBook(bookID, false), scanBook, circulation.ErrNotFound); findErr != nil {
		return findErr
	}

	return circulation.ErrOutOfStock
}

func (t *ledgerTx) Increment(ctx context.Context, bookID circulation.BookID) error {
	rowsAffected, err := t.engine.execute(ctx, t.tx, actionIncrement, t.engine.incrementStock(bookID))
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return circulation.ErrNotFound
	}

	return nil
}

func (t *ledgerTx) Upsert(ctx context.Context, bookID circulation.BookID) (int, error) {
	return first(ctx, t.engine, t.tx, actionUpsert, t.engine.upsertBook(bookID), scanCount, circulation.ErrStoreUnavailable)
}

func (t *ledgerTx) InsertLoan(
	ctx context.Context,
	userID circulation.UserID,
	bookID circulation.BookID,
	loanDate time.Time,
) (circulation.Loan, error) {

	loanDate = circulation.ToStoreTime(loanDate)
	dueDate := circulation.DueDateFor(loanDate)

	loanID, err := first(
		ctx, t.engine, t.tx, actionInsertLoan,
		t.engine.insertLoan(userID, bookID, loanDate, dueDate),
		scanID,
		circulation.ErrStoreUnavailable,
	)
	if err != nil {
		return circulation.Loan{}, err
	}

	return circulation.Loan{
		ID:       loanID,
		UserID:   userID,
		BookID:   bookID,
		LoanDate: loanDate,
		DueDate:  dueDate,
	}, nil
}

func (t *ledgerTx) LatestActiveLoan(
	ctx context.Context,
	userID circulation.UserID,
	bookID circulation.BookID,
) (circulation.Loan, error) {

	return first(
		ctx, t.engine, t.tx, actionLatestActiveLoan,
		t.engine.selectLatestActiveLoan(userID, bookID),
		scanLoan,
		circulation.ErrNoActiveLoan,
	)
}

func (t *ledgerTx) MarkReturned(ctx context.Context, loanID circulation.LoanID) error {
	rowsAffected, err := t.engine.execute(ctx, t.tx, actionMarkReturned, t.engine.markReturned(loanID))
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return circulation.ErrNoActiveLoan
	}

	return nil
}

func (t *ledgerTx) InsertUser(ctx context.Context, user circulation.User) (circulation.UserID, error) {
	return first(ctx, t.engine, t.tx, actionInsertUser, t.engine.insertUser(user), scanID, circulation.ErrStoreUnavailable)
}

func (t *ledgerTx) UpdateUser(ctx context.Context, user circulation.User) error {
	rowsAffected, err := t.engine.execute(ctx, t.tx, actionUpdateUser, t.engine.updateUser(user))
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return circulation.ErrNotFound
	}

	return nil
}

func (t *ledgerTx) AppendJournal(ctx context.Context, entry circulation.JournalEntry) error {
	if _, err := circulation.BuildJournalEntry(entry.EntryType, entry.OccurredAt, entry.PayloadJSON, entry.MetadataJSON); err != nil {
		return errors.Join(circulation.ErrInvalidArgument, err)
	}

	entry.OccurredAt = circulation.ToStoreTime(entry.OccurredAt)

	_, err := t.engine.execute(ctx, t.tx, actionAppendJournal, t.engine.insertJournalEntry(entry))

	return err
}

func scanID(rows adapters.DBRows) (int64, error) {
	var id int64
	err := rows.Scan(&id)

	return id, err
}

func scanBook(rows adapters.DBRows) (circulation.Book, error) {
	var book circulation.Book
	var stock int64

	if err := rows.Scan(&book.ID, &stock); err != nil {
		return circulation.Book{}, err
	}

	book.Stock = int(stock)

	return book, nil
}

func scanUser(rows adapters.DBRows) (circulation.User, error) {
	var user circulation.User
	err := rows.Scan(&user.ID, &user.LastName, &user.FirstName, &user.Email, &user.Address, &user.Phone)

	return user, err
}

func scanLoan(rows adapters.DBRows) (circulation.Loan, error) {
	var loan circulation.Loan

	if err := rows.Scan(&loan.ID, &loan.UserID, &loan.BookID, &loan.LoanDate, &loan.DueDate, &loan.Returned); err != nil {
		return circulation.Loan{}, err
	}

	loan.LoanDate = loan.LoanDate.UTC()
	loan.DueDate = loan.DueDate.UTC()

	return loan, nil
}
