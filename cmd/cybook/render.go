package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/query/bookdetails"
	"github.com/alexandrebha/cybook/library/features/query/booksininventory"
	"github.com/alexandrebha/cybook/library/features/query/catalogsearch"
	"github.com/alexandrebha/cybook/library/features/query/loanhistory"
	"github.com/alexandrebha/cybook/library/features/query/loansbyuser"
	"github.com/alexandrebha/cybook/library/features/query/topborrowed"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(header)

	return t
}

func renderOverdue(w io.Writer, loans []circulation.OverdueLoan) {
	t := newTable(w, table.Row{"Loan", "User", "Book", "Due", "Days late"})
	for _, loan := range loans {
		t.AppendRow(table.Row{loan.ID, loan.UserID, loan.BookID, loan.DueDate.Format(dateLayout), loan.DaysLate})
	}

	t.AppendFooter(table.Row{"", "", "", "Total", len(loans)})
	t.Render()
}

func renderLoans(w io.Writer, loans []loansbyuser.LoanInfo) {
	t := newTable(w, table.Row{"Loan", "User", "Book", "Borrowed", "Due", "Status"})
	for _, loan := range loans {
		t.AppendRow(table.Row{
			loan.ID,
			loan.UserID,
			loan.BookID,
			loan.LoanDate.Format(dateLayout),
			loan.DueDate.Format(dateLayout),
			loanStatus(loan),
		})
	}

	t.Render()
}

func loanStatus(loan loansbyuser.LoanInfo) string {
	switch {
	case loan.Returned:
		return "returned"
	case loan.Overdue:
		return fmt.Sprintf("overdue (%d days)", loan.DaysLate)
	default:
		return "active"
	}
}

func renderRanking(w io.Writer, ranking topborrowed.Ranking) {
	t := newTable(w, table.Row{"#", "Book", "Title", "Author", "Loans"})
	for _, book := range ranking.Books {
		t.AppendRow(table.Row{book.Rank, book.BookID, book.Metadata.Title, book.Metadata.Author, book.Count})
	}

	t.SetCaption("Last %d days.", ranking.WindowDays)
	t.Render()
}

func renderBooks(w io.Writer, books booksininventory.BooksInInventory, withMetadata bool) {
	header := table.Row{"Book", "Stock", "Availability"}
	if withMetadata {
		header = append(header, "Title", "Author")
	}

	t := newTable(w, header)
	for _, book := range books.Books {
		row := table.Row{book.BookID, book.Stock, book.Availability}
		if withMetadata {
			row = append(row, book.Metadata.Title, book.Metadata.Author)
		}

		t.AppendRow(row)
	}

	t.SetCaption("%d titles, %d available.", books.Count, books.Available)
	t.Render()
}

func renderBookDetails(w io.Writer, details bookdetails.BookDetails) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Book", details.BookID},
		{"Title", details.Metadata.Title},
		{"Author", details.Metadata.Author},
		{"Published", details.Metadata.PublicationDate},
		{"Edition", details.Metadata.Edition},
		{"Collection", details.Metadata.Collection},
		{"Availability", details.Availability},
	})

	if details.InInventory {
		t.AppendRows([]table.Row{
			{"Stock", details.Stock},
			{fmt.Sprintf("Loans (%d days)", details.WindowDays), details.RecentLoans},
		})
	}

	t.Render()
}

func renderUsers(w io.Writer, users []circulation.User) {
	t := newTable(w, table.Row{"ID", "Name", "Email", "Phone", "Address"})
	for _, user := range users {
		t.AppendRow(table.Row{user.ID, user.FullName(), user.Email, user.Phone, user.Address})
	}

	t.Render()
}

func renderSearch(w io.Writer, result catalogsearch.SearchResult) {
	t := newTable(w, table.Row{"ISBN", "Title", "Author", "Published", "Availability"})
	for _, hit := range result.Hits {
		t.AppendRow(table.Row{
			hit.Metadata.ISBN,
			hit.Metadata.Title,
			hit.Metadata.Author,
			hit.Metadata.PublicationDate,
			hit.Availability,
		})
	}

	t.SetCaption("%d results for %q.", result.Count, result.Query)
	t.Render()
}

func renderHistory(w io.Writer, entries []loanhistory.Entry) {
	t := newTable(w, table.Row{"#", "When", "Event", "Outcome"})
	for _, entry := range entries {
		outcome := "ok"
		if entry.Failed {
			outcome = "rejected"
		}

		t.AppendRow(table.Row{entry.SequenceNumber, entry.OccurredAt.Format(time.DateTime), entry.EventType, outcome})
	}

	t.Render()
}
