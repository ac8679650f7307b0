// Package topborrowed ranks the most borrowed titles over a trailing window.
//
// The ranking is computed by the store. Each ranked book is then described through the catalog, after the
// SQL query and outside of any transaction. A book the catalog cannot describe is dropped from the result,
// which can therefore be shorter than the requested limit. Every dropped row is logged at warn level.
package topborrowed
