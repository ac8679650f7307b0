package shell

import (
	"strconv"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	// LabelOutOfStock is shown for a known book with no copy on the shelf.
	LabelOutOfStock = "Out of stock"

	// LabelNotAvailable is shown for a title the library does not hold.
	LabelNotAvailable = "Not available"

	labelInStockPrefix = "In stock ("
)

// AvailabilityLabel renders the shelf status of a book. known is false when the book has no inventory row.
func AvailabilityLabel(book circulation.Book, known bool) string {
	switch {
	case !known:
		return LabelNotAvailable
	case book.IsAvailable():
		return labelInStockPrefix + strconv.Itoa(book.Stock) + ")"
	default:
		return LabelOutOfStock
	}
}
