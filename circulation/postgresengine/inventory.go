package postgresengine

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
)

// GetStock returns the number of copies of the book on the shelf.
// Returns circulation.ErrNotFound if the book is unknown.
func (e *Engine) GetStock(ctx context.Context, bookID circulation.BookID) (int, error) {
	obs, ctx := e.observe(ctx, operationGetStock)

	book, err := first(ctx, e, e.db, operationGetStock, e.selectBook(bookID, false), scanBook, circulation.ErrNotFound)
	if err != nil {
		obs.failure(err)
		return 0, err
	}

	obs.success(logAttrBookID, bookID, logAttrStock, book.Stock)

	return book.Stock, nil
}

// FindBook returns the inventory record of the book.
// Returns circulation.ErrNotFound if the book is unknown.
func (e *Engine) FindBook(ctx context.Context, bookID circulation.BookID) (circulation.Book, error) {
	obs, ctx := e.observe(ctx, operationFindBook)

	book, err := first(ctx, e, e.db, operationFindBook, e.selectBook(bookID, false), scanBook, circulation.ErrNotFound)
	if err != nil {
		obs.failure(err)
		return circulation.Book{}, err
	}

	obs.success(logAttrBookID, bookID)

	return book, nil
}

// GetAllBooks returns every book of the inventory ordered by identifier.
func (e *Engine) GetAllBooks(ctx context.Context) ([]circulation.Book, error) {
	obs, ctx := e.observe(ctx, operationGetAllBooks)

	books, err := collect(ctx, e, e.db, operationGetAllBooks, e.selectAllBooks(), scanBook)
	if err != nil {
		obs.failure(err)
		return nil, err
	}

	obs.successWithRows(len(books))

	return books, nil
}

// Upsert adds one copy of the book to the inventory, creating the book with stock 1 if it is unknown.
// It returns the new stock. Callers are expected to have confirmed the identifier with the catalog.
func (e *Engine) Upsert(ctx context.Context, bookID circulation.BookID) (int, error) {
	obs, ctx := e.observe(ctx, operationUpsert)

	var newStock int

	err := e.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		var upsertErr error
		newStock, upsertErr = tx.Upsert(ctx, bookID)

		return upsertErr
	})
	if err != nil {
		obs.failure(err)
		return 0, err
	}

	obs.success(logAttrBookID, bookID, logAttrStock, newStock)

	return newStock, nil
}
