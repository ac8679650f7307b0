package registeruser

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

const commandType = "RegisterUser"

// Command represents the intent to register a new reader.
type Command struct {
	Profile    circulation.User
	OccurredAt core.OccurredAt
}

// BuildCommand creates a new Command. The ID of profile is ignored.
func BuildCommand(lastName, firstName, email, address, phone string, occurredAt time.Time) Command {
	return Command{
		Profile: circulation.User{
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
