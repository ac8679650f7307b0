package circulation

import (
	"context"
	"time"
)

// LedgerTx is the set of store operations available inside one transaction.
//
// Lock* methods take a row lock that is held until the transaction ends, so concurrent
// borrow and return transactions touching the same user or book serialize instead of racing.
// All mutations of stock and loan rows go through these methods.
type LedgerTx interface {
	// LockUser locks and returns the user row. ErrNotFound if it does not exist.
	LockUser(ctx context.Context, userID UserID) (User, error)

	// CountActiveLoans counts the loans of the user that are not returned.
	CountActiveLoans(ctx context.Context, userID UserID) (int, error)

	// LockBook locks and returns the book row. ErrNotFound if it does not exist.
	LockBook(ctx context.Context, bookID BookID) (Book, error)

	// Decrement takes one copy off the shelf. ErrOutOfStock if stock is 0, ErrNotFound if the book is unknown.
	Decrement(ctx context.Context, bookID BookID) error

	// Increment puts one copy back on the shelf. ErrNotFound if the book is unknown.
	Increment(ctx context.Context, bookID BookID) error

	// Upsert inserts the book with stock 1, or adds one copy to an existing book, and returns the new stock.
	Upsert(ctx context.Context, bookID BookID) (int, error)

	// InsertLoan creates an active loan due LoanPeriod after loanDate.
	InsertLoan(ctx context.Context, userID UserID, bookID BookID, loanDate time.Time) (Loan, error)

	// LatestActiveLoan locks and returns the active loan of (user, book) with the latest due date.
	// ErrNoActiveLoan if there is none.
	LatestActiveLoan(ctx context.Context, userID UserID, bookID BookID) (Loan, error)

	// MarkReturned flips an active loan to returned. ErrNoActiveLoan if it is already returned.
	MarkReturned(ctx context.Context, loanID LoanID) error

	// InsertUser stores a new user and returns the assigned identifier.
	InsertUser(ctx context.Context, user User) (UserID, error)

	// UpdateUser overwrites the profile fields of an existing user. ErrNotFound if it does not exist.
	UpdateUser(ctx context.Context, user User) error

	// AppendJournal appends an audit entry that commits or rolls back with the transaction.
	AppendJournal(ctx context.Context, entry JournalEntry) error
}

// TxFunc is executed inside one transaction. Returning an error rolls the transaction back.
type TxFunc func(ctx context.Context, tx LedgerTx) error
