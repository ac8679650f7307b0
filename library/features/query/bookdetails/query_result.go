package bookdetails

import (
	"github.com/alexandrebha/cybook/circulation"
)

// BookDetails represents the query result.
// InInventory is false for a title the catalog knows but the library does not hold.
type BookDetails struct {
	BookID       circulation.BookID
	Metadata     circulation.Metadata
	InInventory  bool
	Stock        int
	Availability string
	RecentLoans  int
	WindowDays   int
}
