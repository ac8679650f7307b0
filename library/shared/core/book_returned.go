package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// BookReturnedEventType is the event type identifier.
const BookReturnedEventType = "BookReturned"

// BookReturned represents a user bringing a borrowed copy back.
// DaysLate is 0 when the copy came back on or before its due date.
type BookReturned struct {
	LoanID     circulation.LoanID `json:"loanID"`
	UserID     circulation.UserID `json:"userID"`
	BookID     circulation.BookID `json:"bookID"`
	DaysLate   int                `json:"daysLate"`
	OccurredAt OccurredAt         `json:"occurredAt"`
}

// BuildBookReturned creates a new BookReturned event for the given loan.
func BuildBookReturned(loan circulation.Loan, occurredAt time.Time) BookReturned {
	occurred := ToOccurredAt(occurredAt)

	return BookReturned{
		LoanID:     loan.ID,
		UserID:     loan.UserID,
		BookID:     loan.BookID,
		DaysLate:   circulation.DaysLate(loan.DueDate, occurred),
		OccurredAt: occurred,
	}
}

func (e BookReturned) EventType() string {
	return BookReturnedEventType
}

func (e BookReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e BookReturned) IsErrorEvent() bool {
	return false
}
