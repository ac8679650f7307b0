package returnbook

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

const commandType = "ReturnBook"

// Command represents the intent of a user to bring a borrowed copy back.
type Command struct {
	UserID     circulation.UserID
	BookID     circulation.BookID
	OccurredAt core.OccurredAt
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(userID circulation.UserID, bookID circulation.BookID, occurredAt time.Time) Command {
	return Command{
		UserID:     userID,
		BookID:     bookID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}
