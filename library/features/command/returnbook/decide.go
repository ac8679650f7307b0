package returnbook

import (
	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

// State holds the active loan to close, if there is one.
type State struct {
	LoanFound bool
	Loan      circulation.Loan
}

// Decide implements the business rules of a return. It is a pure function.
//
// Business Rules:
//
//	GIVEN: an active loan of BookID by UserID
//	WHEN: ReturnBook command is received
//	THEN: BookReturned event is generated, with the days the copy came back late
//	ERROR: circulation.ErrNoActiveLoan if the user holds no active loan of the book
func Decide(s State, command Command) core.DecisionResult {
	if !s.LoanFound {
		return core.ErrorDecision(
			core.BuildReturningBookFailed(
				command.UserID, command.BookID, circulation.ErrNoActiveLoan.Error(), command.OccurredAt),
			circulation.ErrNoActiveLoan)
	}

	return core.SuccessDecision(core.BuildBookReturned(s.Loan, command.OccurredAt))
}
