package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// UserProfileUpdatedEventType is the event type identifier.
const UserProfileUpdatedEventType = "UserProfileUpdated"

// UserProfileUpdated lists the profile fields that changed, by name.
type UserProfileUpdated struct {
	UserID        circulation.UserID `json:"userID"`
	ChangedFields []string           `json:"changedFields"`
	OccurredAt    OccurredAt         `json:"occurredAt"`
}

// BuildUserProfileUpdated creates a new UserProfileUpdated event.
func BuildUserProfileUpdated(userID circulation.UserID, changedFields []string, occurredAt time.Time) UserProfileUpdated {
	return UserProfileUpdated{
		UserID:        userID,
		ChangedFields: changedFields,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e UserProfileUpdated) EventType() string {
	return UserProfileUpdatedEventType
}

func (e UserProfileUpdated) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e UserProfileUpdated) IsErrorEvent() bool {
	return false
}
