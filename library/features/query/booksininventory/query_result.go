package booksininventory

import (
	"github.com/alexandrebha/cybook/circulation"
)

// BookInfo is one inventory row.
type BookInfo struct {
	BookID       circulation.BookID
	Stock        int
	Availability string
	Metadata     circulation.Metadata
}

// BooksInInventory represents the query result, ordered by book identifier.
type BooksInInventory struct {
	Books     []BookInfo
	Count     int
	Available int
}
