package borrowbook

import (
	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

// State is what the store knows about the user and the book, read under their row locks.
type State struct {
	UserExists  bool
	ActiveLoans int
	BookExists  bool
	Stock       int
	Title       string // resolved through the catalog before the transaction
}

// Decide implements the business rules of a borrow. It is a pure function.
//
// Business Rules:
//
//	GIVEN: a user with UserID and a book with BookID
//	WHEN: BorrowBook command is received
//	THEN: BookBorrowed event is generated, due 14 days after the borrow
//	ERROR: circulation.ErrNotFound if the user or the book does not exist
//	ERROR: circulation.ErrLimitExceeded if the user already has 3 active loans
//	ERROR: circulation.ErrOutOfStock if no copy is on the shelf
func Decide(s State, command Command) core.DecisionResult {
	fail := func(err error) core.DecisionResult {
		return core.ErrorDecision(
			core.BuildBorrowingBookFailed(command.UserID, command.BookID, err.Error(), command.OccurredAt),
			err)
	}

	if !s.UserExists {
		return fail(circulation.ErrNotFound)
	}

	if s.ActiveLoans >= circulation.MaxActiveLoans {
		return fail(circulation.ErrLimitExceeded)
	}

	if !s.BookExists {
		return fail(circulation.ErrNotFound)
	}

	if s.Stock <= 0 {
		return fail(circulation.ErrOutOfStock)
	}

	return core.SuccessDecision(
		core.BuildBookBorrowed(command.UserID, command.BookID, s.Title, command.OccurredAt))
}
