package returnbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/command/returnbook"
	"github.com/alexandrebha/cybook/library/shared/core"
)

func Test_Decide_Success_ComputesDaysLate(t *testing.T) {
	// arrange
	loanDate := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	loan := circulation.Loan{
		ID: 4, UserID: 2, BookID: "9782070360024",
		LoanDate: loanDate, DueDate: circulation.DueDateFor(loanDate),
	}
	returnedAt := loan.DueDate.Add(3*24*time.Hour + time.Hour)
	command := returnbook.BuildCommand(2, "9782070360024", returnedAt)

	// act
	result := returnbook.Decide(returnbook.State{LoanFound: true, Loan: loan}, command)

	// assert
	assert.True(t, result.IsSuccess())

	event, ok := result.Event.(core.BookReturned)
	assert.True(t, ok, "expected BookReturned event")
	assert.Equal(t, circulation.LoanID(4), event.LoanID)
	assert.Equal(t, 3, event.DaysLate)
}

func Test_Decide_Error_WhenNoActiveLoan(t *testing.T) {
	// arrange
	command := returnbook.BuildCommand(2, "9782070360024", time.Now())

	// act
	result := returnbook.Decide(returnbook.State{}, command)

	// assert
	assert.ErrorIs(t, result.HasError(), circulation.ErrNoActiveLoan)

	_, ok := result.Event.(core.ReturningBookFailed)
	assert.True(t, ok, "expected ReturningBookFailed event")
}
