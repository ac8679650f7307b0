// Package activeloancount answers how many loans a user currently holds and how many more are allowed.
//
// The count is read from the primary database: it is what a borrow about to happen will be checked against.
package activeloancount
