// Package addbookcopy implements the Add Book Copy use case: one more copy of a catalog-confirmed title
// goes on the shelf. A book that is not yet in the inventory is created with stock 1.
//
// Only titles the catalog can describe are accepted. The lookup happens before the transaction, so a slow
// catalog never holds a row lock.
package addbookcopy
