package borrowbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/command/borrowbook"
	"github.com/alexandrebha/cybook/library/shared/core"
)

func Test_Decide_Success_WhenAllPreconditionsMet(t *testing.T) {
	// arrange
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	command := borrowbook.BuildCommand(7, "9782070360024", now)
	s := borrowbook.State{UserExists: true, ActiveLoans: 2, BookExists: true, Stock: 1, Title: "Bel-Ami"}

	// act
	result := borrowbook.Decide(s, command)

	// assert
	assert.True(t, result.IsSuccess())
	assert.NoError(t, result.HasError())

	event, ok := result.Event.(core.BookBorrowed)
	assert.True(t, ok, "expected BookBorrowed event")
	assert.Equal(t, circulation.UserID(7), event.UserID)
	assert.Equal(t, "9782070360024", event.BookID)
	assert.Equal(t, "Bel-Ami", event.Title)
	assert.Equal(t, now.Add(14*24*time.Hour), event.DueDate)
}

func Test_Decide_Rejections(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		description string
		state       borrowbook.State
		expectedErr error
	}{
		{
			description: "unknown user",
			state:       borrowbook.State{UserExists: false, BookExists: true, Stock: 1},
			expectedErr: circulation.ErrNotFound,
		},
		{
			description: "user at the borrowing limit",
			state:       borrowbook.State{UserExists: true, ActiveLoans: 3, BookExists: true, Stock: 1},
			expectedErr: circulation.ErrLimitExceeded,
		},
		{
			description: "unknown book",
			state:       borrowbook.State{UserExists: true, BookExists: false},
			expectedErr: circulation.ErrNotFound,
		},
		{
			description: "no copy on the shelf",
			state:       borrowbook.State{UserExists: true, BookExists: true, Stock: 0},
			expectedErr: circulation.ErrOutOfStock,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			command := borrowbook.BuildCommand(1, "9782070360024", now)

			// act
			result := borrowbook.Decide(tc.state, command)

			// assert
			assert.False(t, result.IsSuccess())
			assert.ErrorIs(t, result.HasError(), tc.expectedErr)

			event, ok := result.Event.(core.BorrowingBookFailed)
			assert.True(t, ok, "expected BorrowingBookFailed event")
			assert.Equal(t, tc.expectedErr.Error(), event.FailureInfo)
		})
	}
}

func Test_Decide_LimitIsCheckedBeforeStock(t *testing.T) {
	// arrange
	command := borrowbook.BuildCommand(1, "9782070360024", time.Now())
	s := borrowbook.State{UserExists: true, ActiveLoans: 3, BookExists: true, Stock: 0}

	// act
	result := borrowbook.Decide(s, command)

	// assert
	assert.ErrorIs(t, result.HasError(), circulation.ErrLimitExceeded)
}
