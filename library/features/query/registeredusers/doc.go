// Package registeredusers lists registered users ordered by identifier,
// optionally only those who currently hold at least one loan.
package registeredusers
