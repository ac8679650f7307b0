package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// UserRegisteredEventType is the event type identifier.
const UserRegisteredEventType = "UserRegistered"

// UserRegistered represents a new reader account. Contact details stay in the users table.
type UserRegistered struct {
	UserID     circulation.UserID `json:"userID"`
	LastName   string             `json:"lastName"`
	FirstName  string             `json:"firstName"`
	OccurredAt OccurredAt         `json:"occurredAt"`
}

// BuildUserRegistered creates a new UserRegistered event.
func BuildUserRegistered(user circulation.User, occurredAt time.Time) UserRegistered {
	return UserRegistered{
		UserID:     user.ID,
		LastName:   user.LastName,
		FirstName:  user.FirstName,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e UserRegistered) EventType() string {
	return UserRegisteredEventType
}

func (e UserRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e UserRegistered) IsErrorEvent() bool {
	return false
}
