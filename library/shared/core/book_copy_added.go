package core

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// BookCopyAddedEventType is the event type identifier.
const BookCopyAddedEventType = "BookCopyAdded"

// BookCopyAdded represents a catalog-confirmed copy put on the shelf. Stock is the stock after the addition.
type BookCopyAdded struct {
	BookID     circulation.BookID `json:"bookID"`
	Title      string             `json:"title"`
	Author     string             `json:"author,omitempty"`
	Stock      int                `json:"stock"`
	OccurredAt OccurredAt         `json:"occurredAt"`
}

// BuildBookCopyAdded creates a new BookCopyAdded event.
func BuildBookCopyAdded(metadata circulation.Metadata, bookID circulation.BookID, stock int, occurredAt time.Time) BookCopyAdded {
	return BookCopyAdded{
		BookID:     bookID,
		Title:      metadata.Title,
		Author:     metadata.Author,
		Stock:      stock,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookCopyAdded) EventType() string {
	return BookCopyAddedEventType
}

func (e BookCopyAdded) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e BookCopyAdded) IsErrorEvent() bool {
	return false
}
