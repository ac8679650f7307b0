package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// ReturningBookFailedEventType is the event type identifier.
const ReturningBookFailedEventType = "ReturningBookFailed"

// ReturningBookFailed records a return request that could not be matched to an active loan.
type ReturningBookFailed struct {
	UserID      circulation.UserID `json:"userID"`
	BookID      circulation.BookID `json:"bookID"`
	FailureInfo string             `json:"failureInfo"`
	OccurredAt  OccurredAt         `json:"occurredAt"`
}

// BuildReturningBookFailed creates a new ReturningBookFailed event.
func BuildReturningBookFailed(
	userID circulation.UserID,
	bookID circulation.BookID,
	failureInfo string,
	occurredAt time.Time,
) ReturningBookFailed {
	return ReturningBookFailed{
		UserID:      userID,
		BookID:      bookID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e ReturningBookFailed) EventType() string {
	return ReturningBookFailedEventType
}

func (e ReturningBookFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e ReturningBookFailed) IsErrorEvent() bool {
	return true
}
