// Package returnbook implements the Return Book use case.
//
// A return closes the user's active loan of the book with the latest due date and puts the copy back
// on the shelf, in one transaction. Returning twice does not add a second copy: the second attempt finds
// no active loan and is rejected with circulation.ErrNoActiveLoan.
package returnbook
