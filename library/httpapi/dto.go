package httpapi

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/query/booksininventory"
	"github.com/alexandrebha/cybook/library/features/query/catalogsearch"
	"github.com/alexandrebha/cybook/library/features/query/loanhistory"
	"github.com/alexandrebha/cybook/library/features/query/loansbyuser"
)

type loanRequest struct {
	UserID circulation.UserID `json:"userID"`
	BookID circulation.BookID `json:"bookID"`
}

type loanResponse struct {
	LoanID circulation.LoanID `json:"loanID"`
	Stock  *int               `json:"stock,omitempty"`
}

type userRequest struct {
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

type userDTO struct {
	ID        circulation.UserID `json:"id"`
	LastName  string             `json:"lastName"`
	FirstName string             `json:"firstName"`
	Email     string             `json:"email"`
	Address   string             `json:"address"`
	Phone     string             `json:"phone"`
}

func toUserDTO(user circulation.User) userDTO {
	return userDTO{
		ID:        user.ID,
		LastName:  user.LastName,
		FirstName: user.FirstName,
		Email:     user.Email,
		Address:   user.Address,
		Phone:     user.Phone,
	}
}

type metadataDTO struct {
	ISBN            string `json:"isbn,omitempty"`
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	Edition         string `json:"edition,omitempty"`
	Collection      string `json:"collection,omitempty"`
}

func toMetadataDTO(m circulation.Metadata) *metadataDTO {
	if !m.HasTitle() {
		return nil
	}

	return &metadataDTO{
		ISBN:            m.ISBN,
		Title:           m.Title,
		Author:          m.Author,
		PublicationDate: m.PublicationDate,
		Edition:         m.Edition,
		Collection:      m.Collection,
	}
}

type loanDTO struct {
	ID       circulation.LoanID `json:"id"`
	UserID   circulation.UserID `json:"userID"`
	BookID   circulation.BookID `json:"bookID"`
	LoanDate time.Time          `json:"loanDate"`
	DueDate  time.Time          `json:"dueDate"`
	Returned bool               `json:"returned"`
	DaysLate int                `json:"daysLate,omitempty"`
}

func toLoanDTO(loan circulation.Loan, daysLate int) loanDTO {
	return loanDTO{
		ID:       loan.ID,
		UserID:   loan.UserID,
		BookID:   loan.BookID,
		LoanDate: loan.LoanDate,
		DueDate:  loan.DueDate,
		Returned: loan.Returned,
		DaysLate: daysLate,
	}
}

func toLoanDTOs(loans []loansbyuser.LoanInfo) []loanDTO {
	dtos := make([]loanDTO, 0, len(loans))
	for _, loan := range loans {
		dtos = append(dtos, toLoanDTO(loan.Loan, loan.DaysLate))
	}

	return dtos
}

func toOverdueDTOs(loans []circulation.OverdueLoan) []loanDTO {
	dtos := make([]loanDTO, 0, len(loans))
	for _, loan := range loans {
		dtos = append(dtos, toLoanDTO(loan.Loan, loan.DaysLate))
	}

	return dtos
}

type bookDTO struct {
	BookID       circulation.BookID `json:"bookID"`
	Stock        int                `json:"stock"`
	Availability string             `json:"availability"`
	Metadata     *metadataDTO       `json:"metadata,omitempty"`
	RecentLoans  *int               `json:"recentLoans,omitempty"`
}

func toBookDTOs(books []booksininventory.BookInfo) []bookDTO {
	dtos := make([]bookDTO, 0, len(books))
	for _, book := range books {
		dtos = append(dtos, bookDTO{
			BookID:       book.BookID,
			Stock:        book.Stock,
			Availability: book.Availability,
			Metadata:     toMetadataDTO(book.Metadata),
		})
	}

	return dtos
}

type rankedBookDTO struct {
	Rank     int                `json:"rank"`
	BookID   circulation.BookID `json:"bookID"`
	Count    int                `json:"count"`
	Metadata *metadataDTO       `json:"metadata,omitempty"`
}

type searchHitDTO struct {
	Metadata     *metadataDTO `json:"metadata"`
	Availability string       `json:"availability"`
}

func toSearchHitDTOs(hits []catalogsearch.Hit) []searchHitDTO {
	dtos := make([]searchHitDTO, 0, len(hits))
	for _, hit := range hits {
		dtos = append(dtos, searchHitDTO{
			Metadata:     toMetadataDTO(hit.Metadata),
			Availability: hit.Availability,
		})
	}

	return dtos
}

type historyEntryDTO struct {
	SequenceNumber int64     `json:"sequenceNumber"`
	EventType      string    `json:"eventType"`
	OccurredAt     time.Time `json:"occurredAt"`
	Failed         bool      `json:"failed"`
	Event          any       `json:"event"`
}

func toHistoryDTOs(entries []loanhistory.Entry) []historyEntryDTO {
	dtos := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, historyEntryDTO{
			SequenceNumber: entry.SequenceNumber,
			EventType:      entry.EventType,
			OccurredAt:     entry.OccurredAt,
			Failed:         entry.Failed,
			Event:          entry.Event,
		})
	}

	return dtos
}
