package httpapi_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/catalog"
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
	"github.com/alexandrebha/cybook/library/httpapi"
	"github.com/alexandrebha/cybook/library/shared/shell"
	"github.com/alexandrebha/cybook/testutil/catalog/catalogfake"
	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool                `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Error   string              `json:"error"`
}

func newTestServer(ledger *memledger.Ledger, catalogFake *catalogfake.Catalog) *httptest.Server {
	handlers := httpapi.Handlers{
		BorrowBook:       borrowbook.NewCommandHandler(ledger, catalogFake),
		ReturnBook:       returnbook.NewCommandHandler(ledger),
		AddBookCopy:      addbookcopy.NewCommandHandler(ledger, catalogFake),
		RegisterUser:     registeruser.NewCommandHandler(ledger),
		UpdateUser:       updateuser.NewCommandHandler(ledger),
		ActiveLoanCount:  activeloancount.NewQueryHandler(ledger),
		OverdueLoans:     overdueloans.NewQueryHandler(ledger),
		TopBorrowed:      topborrowed.NewQueryHandler(ledger, catalogFake),
		BooksInInventory: booksininventory.NewQueryHandler(ledger, catalogFake),
		BookDetails:      bookdetails.NewQueryHandler(ledger, catalogFake),
		LoansByUser:      loansbyuser.NewQueryHandler(ledger),
		RegisteredUsers:  registeredusers.NewQueryHandler(ledger),
		CatalogSearch:    catalogsearch.NewQueryHandler(ledger, catalogFake),
		LoanHistory:      loanhistory.NewQueryHandler(ledger),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return httptest.NewServer(httpapi.NewServer(handlers,
		httpapi.WithLogger(logger),
		httpapi.WithClock(func() time.Time { return fixedNow }),
		httpapi.WithAllowedOrigins("http://localhost:3000")))
}

func do(t *testing.T, server *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&env))

	return resp.StatusCode, env
}

func Test_Server_BorrowAndReturn(t *testing.T) {
	// arrange
	ledger := memledger.New()
	ledger.GivenBookWithStock("978-1", 2)
	userID := ledger.GivenUser("Durand")
	server := newTestServer(ledger, catalogfake.New().WithTitle("978-1", "Bel-Ami"))
	defer server.Close()
	body := `{"userID":` + strconv.FormatInt(userID, 10) + `,"bookID":"978-1"}`

	// act
	borrowStatus, borrowEnv := do(t, server, http.MethodPost, "/loans", body)
	returnStatus, _ := do(t, server, http.MethodPost, "/returns", body)
	secondStatus, secondEnv := do(t, server, http.MethodPost, "/returns", body)

	// assert
	assert.Equal(t, http.StatusCreated, borrowStatus)
	assert.True(t, borrowEnv.Success)
	assert.Contains(t, string(borrowEnv.Data), `"stock":1`)
	assert.Equal(t, http.StatusOK, returnStatus)
	assert.Equal(t, http.StatusConflict, secondStatus)
	assert.Equal(t, shell.MsgNoActiveLoan, secondEnv.Error)

	stock, _ := ledger.Stock("978-1")
	assert.Equal(t, 2, stock)
}

func Test_Server_Borrow_MalformedBody(t *testing.T) {
	// arrange
	server := newTestServer(memledger.New(), catalogfake.New())
	defer server.Close()

	// act
	status, env := do(t, server, http.MethodPost, "/loans", `{"userID":`)

	// assert
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func Test_Server_RegisterUser_InvalidProfile(t *testing.T) {
	// arrange
	server := newTestServer(memledger.New(), catalogfake.New())
	defer server.Close()
	body := `{"lastName":"Durand","firstName":"Jeanne","email":"nope","address":"1 rue X, Paris","phone":"0612345678"}`

	// act
	status, env := do(t, server, http.MethodPost, "/users", body)

	// assert
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, shell.MsgValidation+" (invalid: Email)", env.Error)
}

func Test_Server_GetBook_Unknown(t *testing.T) {
	// arrange
	server := newTestServer(memledger.New(), catalogfake.New())
	defer server.Close()

	// act
	status, env := do(t, server, http.MethodGet, "/books/000", "")

	// assert
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, shell.MsgNotFound, env.Error)
}

func Test_Server_ActiveLoans_InvalidUserID(t *testing.T) {
	// arrange
	server := newTestServer(memledger.New(), catalogfake.New())
	defer server.Close()

	// act
	status, _ := do(t, server, http.MethodGet, "/users/abc/active-loans", "")

	// assert
	assert.Equal(t, http.StatusBadRequest, status)
}

func Test_Server_Overdue(t *testing.T) {
	// arrange
	ledger := memledger.New()
	userID := ledger.GivenUser("Durand")
	ledger.GivenLoan(userID, "978-1", fixedNow.Add(-20*24*time.Hour), false)
	server := newTestServer(ledger, catalogfake.New())
	defer server.Close()

	// act
	status, env := do(t, server, http.MethodGet, "/overdue", "")

	// assert
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"count":1`)
	assert.Contains(t, string(env.Data), `"daysLate":6`)
}

func Test_Server_Search_CatalogDown(t *testing.T) {
	// arrange
	server := newTestServer(memledger.New(), catalogfake.New().FailWith(catalog.ErrServer))
	defer server.Close()

	// act
	status, env := do(t, server, http.MethodGet, "/search?q=Maupassant", "")

	// assert
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, shell.MsgCatalogUnreachable, env.Error)
}

func Test_StatusFor(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{nil, http.StatusOK},
		{circulation.ErrValidation, http.StatusBadRequest},
		{circulation.ErrNotFound, http.StatusNotFound},
		{circulation.ErrOutOfStock, http.StatusConflict},
		{circulation.ErrLimitExceeded, http.StatusConflict},
		{circulation.ErrMetadataUnavailable, http.StatusUnprocessableEntity},
		{errors.Join(circulation.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{circulation.ErrInventoryInconsistent, http.StatusInternalServerError},
		{catalog.ErrRateLimited, http.StatusBadGateway},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, httpapi.StatusFor(tc.err), "error: %v", tc.err)
	}
}
