package postgresengine

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/alexandrebha/cybook/circulation"
)

// All builders render in prepared mode, so values travel as $n arguments and never inside the SQL text.

func (e *Engine) selectBook(bookID circulation.BookID, forUpdate bool) *goqu.SelectDataset {
	ds := dialect.From(e.booksTableName).Prepared(true).
		Select(colID, colStock).
		Where(goqu.C(colID).Eq(bookID))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	return ds
}

func (e *Engine) selectAllBooks() *goqu.SelectDataset {
	return dialect.From(e.booksTableName).Prepared(true).
		Select(colID, colStock).
		Order(goqu.C(colID).Asc())
}

// decrementStock only matches a row that still has a copy on the shelf.
func (e *Engine) decrementStock(bookID circulation.BookID) *goqu.UpdateDataset {
	return dialect.Update(e.booksTableName).Prepared(true).
		Set(goqu.Record{colStock: goqu.L("? - 1", goqu.C(colStock))}).
		Where(goqu.C(colID).Eq(bookID), goqu.C(colStock).Gt(0))
}

func (e *Engine) incrementStock(bookID circulation.BookID) *goqu.UpdateDataset {
	return dialect.Update(e.booksTableName).Prepared(true).
		Set(goqu.Record{colStock: goqu.L("? + 1", goqu.C(colStock))}).
		Where(goqu.C(colID).Eq(bookID))
}

// upsertBook inserts a book with one copy or adds one copy to it, in a single statement.
func (e *Engine) upsertBook(bookID circulation.BookID) *goqu.InsertDataset {
	return dialect.Insert(e.booksTableName).Prepared(true).
		Rows(goqu.Record{colID: bookID, colStock: 1}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{colStock: goqu.L("? + 1", goqu.I(e.booksTableName+"."+colStock))})).
		Returning(colStock)
}

func (e *Engine) selectUser(userID circulation.UserID, forUpdate bool) *goqu.SelectDataset {
	ds := dialect.From(e.usersTableName).Prepared(true).
		Select(colID, colLastName, colFirstName, colEmail, colAddress, colPhone).
		Where(goqu.C(colID).Eq(userID))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	return ds
}

func (e *Engine) selectUsers(withActiveLoansOnly bool) *goqu.SelectDataset {
	ds := dialect.From(e.usersTableName).Prepared(true).
		Select(colID, colLastName, colFirstName, colEmail, colAddress, colPhone).
		Order(goqu.C(colID).Asc())

	if withActiveLoansOnly {
		borrowers := dialect.From(e.loansTableName).Prepared(true).
			Select(colUserID).
			Where(goqu.C(colReturned).IsFalse())

		ds = ds.Where(goqu.C(colID).In(borrowers))
	}

	return ds
}

func (e *Engine) insertUser(user circulation.User) *goqu.InsertDataset {
	return dialect.Insert(e.usersTableName).Prepared(true).
		Rows(goqu.Record{
			colLastName:  user.LastName,
			colFirstName: user.FirstName,
			colEmail:     user.Email,
			colAddress:   user.Address,
			colPhone:     user.Phone,
		}).
		Returning(colID)
}

func (e *Engine) updateUser(user circulation.User) *goqu.UpdateDataset {
	return dialect.Update(e.usersTableName).Prepared(true).
		Set(goqu.Record{
			colLastName:  user.LastName,
			colFirstName: user.FirstName,
			colEmail:     user.Email,
			colAddress:   user.Address,
			colPhone:     user.Phone,
		}).
		Where(goqu.C(colID).Eq(user.ID))
}

func (e *Engine) countActiveLoans(userID circulation.UserID) *goqu.SelectDataset {
	return dialect.From(e.loansTableName).Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colUserID).Eq(userID), goqu.C(colReturned).IsFalse())
}

func (e *Engine) insertLoan(userID circulation.UserID, bookID circulation.BookID, loanDate, dueDate time.Time) *goqu.InsertDataset {
	return dialect.Insert(e.loansTableName).Prepared(true).
		Rows(goqu.Record{
			colUserID:   userID,
			colBookID:   bookID,
			colLoanDate: loanDate,
			colDueDate:  dueDate,
			colReturned: false,
		}).
		Returning(colID)
}

// selectLatestActiveLoan picks the active loan with the latest due date, the highest id breaking ties.
func (e *Engine) selectLatestActiveLoan(userID circulation.UserID, bookID circulation.BookID) *goqu.SelectDataset {
	return e.selectLoanColumns().
		Where(
			goqu.C(colUserID).Eq(userID),
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colReturned).IsFalse(),
		).
		Order(goqu.C(colDueDate).Desc(), goqu.C(colID).Desc()).
		Limit(1).
		ForUpdate(exp.Wait)
}

func (e *Engine) markReturned(loanID circulation.LoanID) *goqu.UpdateDataset {
	return dialect.Update(e.loansTableName).Prepared(true).
		Set(goqu.Record{colReturned: true}).
		Where(goqu.C(colID).Eq(loanID), goqu.C(colReturned).IsFalse())
}

func (e *Engine) selectLoanColumns() *goqu.SelectDataset {
	return dialect.From(e.loansTableName).Prepared(true).
		Select(colID, colUserID, colBookID, colLoanDate, colDueDate, colReturned)
}

func (e *Engine) selectOverdueLoans(now time.Time) *goqu.SelectDataset {
	return e.selectLoanColumns().
		Where(goqu.C(colReturned).IsFalse(), goqu.C(colDueDate).Lt(now)).
		Order(goqu.C(colDueDate).Asc(), goqu.C(colID).Asc())
}

func (e *Engine) countOverdueLoans(now time.Time) *goqu.SelectDataset {
	return dialect.From(e.loansTableName).Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colReturned).IsFalse(), goqu.C(colDueDate).Lt(now))
}

// selectLoans lists loans newest first. A zero userID lists the loans of all users.
func (e *Engine) selectLoans(userID circulation.UserID, activeOnly bool) *goqu.SelectDataset {
	ds := e.selectLoanColumns().
		Order(goqu.C(colLoanDate).Desc(), goqu.C(colID).Desc())

	if userID != 0 {
		ds = ds.Where(goqu.C(colUserID).Eq(userID))
	}

	if activeOnly {
		ds = ds.Where(goqu.C(colReturned).IsFalse())
	}

	return ds
}

// selectTopBorrowed counts loans of any return status created at or after windowStart.
func (e *Engine) selectTopBorrowed(windowStart time.Time, limit int) *goqu.SelectDataset {
	return dialect.From(e.loansTableName).Prepared(true).
		Select(goqu.C(colBookID), goqu.COUNT(goqu.Star()).As(aliasCount)).
		Where(goqu.C(colLoanDate).Gte(windowStart)).
		GroupBy(goqu.C(colBookID)).
		Order(goqu.I(aliasCount).Desc(), goqu.C(colBookID).Asc()).
		Limit(uint(limit))
}

func (e *Engine) countLoansSince(bookID circulation.BookID, windowStart time.Time) *goqu.SelectDataset {
	return dialect.From(e.loansTableName).Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colBookID).Eq(bookID), goqu.C(colLoanDate).Gte(windowStart))
}

func (e *Engine) insertJournalEntry(entry circulation.JournalEntry) *goqu.InsertDataset {
	return dialect.Insert(e.journalTableName).Prepared(true).
		Rows(goqu.Record{
			colEntryType:  entry.EntryType,
			colOccurredAt: entry.OccurredAt,
			colPayload:    goqu.L(castJsonb, string(entry.PayloadJSON)),
			colMetadata:   goqu.L(castJsonb, string(entry.MetadataJSON)),
		})
}

// selectJournal lists journal entries newest first. containment is a JSON document the payload must contain, or "".
func (e *Engine) selectJournal(containment string, limit int) *goqu.SelectDataset {
	ds := dialect.From(e.journalTableName).Prepared(true).
		Select(colSequenceNumber, colEntryType, colOccurredAt, colPayload, colMetadata).
		Order(goqu.C(colSequenceNumber).Desc())

	if containment != "" {
		ds = ds.Where(goqu.L("? @> "+castJsonb, goqu.C(colPayload), containment))
	}

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	return ds
}
