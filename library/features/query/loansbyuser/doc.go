// Package loansbyuser lists the loans of one user, or of every user, newest loan first.
package loansbyuser
