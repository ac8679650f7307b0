// Package booksininventory lists every book of the inventory with its shelf status.
//
// Catalog metadata is attached only on request, one lookup per book. A failed lookup leaves the metadata
// of that row empty; the listing itself never fails because of the catalog.
package booksininventory
