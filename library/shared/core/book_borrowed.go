package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// BookBorrowedEventType is the event type identifier.
const BookBorrowedEventType = "BookBorrowed"

// BookBorrowed represents a user taking one copy of a book off the shelf.
// LoanID is assigned by the store after the decision, see WithLoanID.
type BookBorrowed struct {
	LoanID     circulation.LoanID `json:"loanID,omitempty"`
	UserID     circulation.UserID `json:"userID"`
	BookID     circulation.BookID `json:"bookID"`
	Title      string             `json:"title,omitempty"`
	DueDate    time.Time          `json:"dueDate"`
	OccurredAt OccurredAt         `json:"occurredAt"`
}

// BuildBookBorrowed creates a new BookBorrowed event with the due date derived from occurredAt.
func BuildBookBorrowed(
	userID circulation.UserID,
	bookID circulation.BookID,
	title string,
	occurredAt time.Time,
) BookBorrowed {
	occurred := ToOccurredAt(occurredAt)

	return BookBorrowed{
		UserID:     userID,
		BookID:     bookID,
		Title:      title,
		DueDate:    circulation.DueDateFor(occurred),
		OccurredAt: occurred,
	}
}

// WithLoanID returns a copy of the event with the store-assigned loan identifier.
func (e BookBorrowed) WithLoanID(loanID circulation.LoanID) BookBorrowed {
	e.LoanID = loanID
	return e
}

func (e BookBorrowed) EventType() string {
	return BookBorrowedEventType
}

func (e BookBorrowed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e BookBorrowed) IsErrorEvent() bool {
	return false
}
