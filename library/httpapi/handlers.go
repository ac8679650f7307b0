package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/command/addbookcopy"
	"github.com/alexandrebha/cybook/library/features/command/borrowbook"
	"github.com/alexandrebha/cybook/library/features/command/registeruser"
	"github.com/alexandrebha/cybook/library/features/command/returnbook"
	"github.com/alexandrebha/cybook/library/features/command/updateuser"
	"github.com/alexandrebha/cybook/library/features/query/activeloancount"
	"github.com/alexandrebha/cybook/library/features/query/bookdetails"
	"github.com/alexandrebha/cybook/library/features/query/booksininventory"
	"github.com/alexandrebha/cybook/library/features/query/catalogsearch"
	"github.com/alexandrebha/cybook/library/features/query/loanhistory"
	"github.com/alexandrebha/cybook/library/features/query/loansbyuser"
	"github.com/alexandrebha/cybook/library/features/query/overdueloans"
	"github.com/alexandrebha/cybook/library/features/query/registeredusers"
	"github.com/alexandrebha/cybook/library/features/query/topborrowed"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err, s.logger)
		return
	}

	result, err := s.handlers.BorrowBook.Handle(r.Context(), borrowbook.BuildCommand(req.UserID, req.BookID, s.now()))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusCreated, loanResponse{LoanID: result.LoanID, Stock: &result.Stock}, s.logger)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err, s.logger)
		return
	}

	result, err := s.handlers.ReturnBook.Handle(r.Context(), returnbook.BuildCommand(req.UserID, req.BookID, s.now()))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, loanResponse{LoanID: result.LoanID}, s.logger)
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	s.listLoans(w, r, 0)
}

func (s *Server) handleUserLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	s.listLoans(w, r, userID)
}

func (s *Server) listLoans(w http.ResponseWriter, r *http.Request, userID circulation.UserID) {
	activeOnly, err := boolQuery(r, "active")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	result, err := s.handlers.LoansByUser.Handle(r.Context(), loansbyuser.BuildQuery(userID, activeOnly, s.now()))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, toLoanDTOs(result.Loans), s.logger)
}

func (s *Server) handleActiveLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	result, err := s.handlers.ActiveLoanCount.Handle(r.Context(), activeloancount.BuildQuery(userID))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userID":    result.UserID,
		"active":    result.Count,
		"remaining": result.Remaining,
	}, s.logger)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	countOnly, err := boolQuery(r, "count")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	query := overdueloans.BuildQuery(s.now())
	if countOnly {
		query = overdueloans.BuildCountQuery(s.now())
	}

	result, err := s.handlers.OverdueLoans.Handle(r.Context(), query)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": result.Count,
		"loans": toOverdueDTOs(result.Loans),
	}, s.logger)
}

func (s *Server) handleTopBorrowed(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	limit, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	result, err := s.handlers.TopBorrowed.Handle(r.Context(), topborrowed.BuildQuery(days, limit, s.now()))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	books := make([]rankedBookDTO, 0, len(result.Books))
	for _, book := range result.Books {
		books = append(books, rankedBookDTO{
			Rank:     book.Rank,
			BookID:   book.BookID,
			Count:    book.Count,
			Metadata: toMetadataDTO(book.Metadata),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"windowDays": result.WindowDays, "books": books}, s.logger)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	withMetadata, err := boolQuery(r, "metadata")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	result, err := s.handlers.BooksInInventory.Handle(r.Context(), booksininventory.BuildQuery(withMetadata))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, toBookDTOs(result.Books), s.logger)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	result, err := s.handlers.BookDetails.Handle(r.Context(), bookdetails.BuildQuery(chi.URLParam(r, "id"), s.now()))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, bookDTO{
		BookID:       result.BookID,
		Stock:        result.Stock,
		Availability: result.Availability,
		Metadata:     toMetadataDTO(result.Metadata),
		RecentLoans:  &result.RecentLoans,
	}, s.logger)
}

func (s *Server) handleAddCopy(w http.ResponseWriter, r *http.Request) {
	result, err := s.handlers.AddBookCopy.Handle(r.Context(), addbookcopy.BuildCommand(chi.URLParam(r, "id"), s.now()))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"stock": result.Stock}, s.logger)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := boolQuery(r, "activeLoans")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	query := registeredusers.BuildQuery()
	if activeOnly {
		query = query.WithActiveLoansOnly()
	}

	result, err := s.handlers.RegisteredUsers.Handle(r.Context(), query)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	users := make([]userDTO, 0, len(result.Users))
	for _, user := range result.Users {
		users = append(users, toUserDTO(user))
	}

	writeJSON(w, http.StatusOK, users, s.logger)
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err, s.logger)
		return
	}

	command := registeruser.BuildCommand(req.LastName, req.FirstName, req.Email, req.Address, req.Phone, s.now())

	result, err := s.handlers.RegisterUser.Handle(r.Context(), command)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"userID": result.CreatedID}, s.logger)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	var req userRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err, s.logger)
		return
	}

	command := updateuser.BuildCommand(userID, req.LastName, req.FirstName, req.Email, req.Address, req.Phone, s.now())

	result, err := s.handlers.UpdateUser.Handle(r.Context(), command)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"changed": !result.Idempotent}, s.logger)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := s.handlers.CatalogSearch.Handle(r.Context(), catalogsearch.BuildQuery(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, toSearchHitDTOs(result.Hits), s.logger)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := intQuery(r, "user")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	limit, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	query := loanhistory.BuildQuery(circulation.UserID(userID), r.URL.Query().Get("book"), limit)

	result, err := s.handlers.LoanHistory.Handle(r.Context(), query)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryDTOs(result.Entries), s.logger)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %s", ErrBadRequestBody, err.Error())
	}

	return nil
}

func userIDParam(r *http.Request) (circulation.UserID, error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.Join(circulation.ErrInvalidArgument, errors.New("user id must be a positive integer"))
	}

	return userID, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(circulation.ErrInvalidArgument, fmt.Errorf("query parameter %q: %w", name, err))
	}

	return value, nil
}

func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Join(circulation.ErrInvalidArgument, fmt.Errorf("query parameter %q: %w", name, err))
	}

	return value, nil
}
