// Package overdueloans lists the active loans past their due date, oldest due date first,
// or only counts them.
package overdueloans
