// Package loanhistory reads the loan journal back as domain events, newest first.
//
// The journal holds one entry per decision taken by a command: borrows, returns, rejected attempts,
// added copies and user changes. It can be narrowed to one user, one book, or both.
package loanhistory
