package addbookcopy

import (
	"strings"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

const commandType = "AddBookCopy"

// Command represents the intent to put one more copy of a book on the shelf.
type Command struct {
	BookID     circulation.BookID
	OccurredAt core.OccurredAt
}

// BuildCommand creates a new Command. Surrounding whitespace of bookID is dropped.
func BuildCommand(bookID circulation.BookID, occurredAt time.Time) Command {
	return Command{
		BookID:     strings.TrimSpace(bookID),
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}
