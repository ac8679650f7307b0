package updateuser

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

const commandType = "UpdateUserProfile"

// Command represents the intent to replace the profile of an existing user.
type Command struct {
	Profile    circulation.User
	OccurredAt core.OccurredAt
}

// BuildCommand creates a new Command.
func BuildCommand(userID circulation.UserID, lastName, firstName, email, address, phone string, occurredAt time.Time) Command {
	return Command{
		Profile: circulation.User{
			ID:        userID,
			LastName:  lastName,
			FirstName: firstName,
			Email:     email,
			Address:   address,
			Phone:     phone,
		},
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}
