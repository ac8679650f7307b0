package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// BorrowingBookFailedEventType is the event type identifier.
const BorrowingBookFailedEventType = "BorrowingBookFailed"

// BorrowingBookFailed records a borrow request that was rejected by a business rule.
type BorrowingBookFailed struct {
	UserID      circulation.UserID `json:"userID"`
	BookID      circulation.BookID `json:"bookID"`
	FailureInfo string             `json:"failureInfo"`
	OccurredAt  OccurredAt         `json:"occurredAt"`
}

// BuildBorrowingBookFailed creates a new BorrowingBookFailed event.
func BuildBorrowingBookFailed(
	userID circulation.UserID,
	bookID circulation.BookID,
	failureInfo string,
	occurredAt time.Time,
) BorrowingBookFailed {
	return BorrowingBookFailed{
		UserID:      userID,
		BookID:      bookID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e BorrowingBookFailed) EventType() string {
	return BorrowingBookFailedEventType
}

func (e BorrowingBookFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e BorrowingBookFailed) IsErrorEvent() bool {
	return true
}
