package booksininventory

import (
	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Project builds the listing from the inventory rows. metadata may be nil or incomplete.
func Project(books []circulation.Book, metadata map[circulation.BookID]circulation.Metadata) BooksInInventory {
	result := BooksInInventory{
		Books: make([]BookInfo, 0, len(books)),
	}

	for _, book := range books {
		if book.IsAvailable() {
			result.Available++
		}

		result.Books = append(result.Books, BookInfo{
			BookID:       book.ID,
			Stock:        book.Stock,
			Availability: shell.AvailabilityLabel(book, true),
			Metadata:     metadata[book.ID],
		})
	}

	result.Count = len(result.Books)

	return result
}
