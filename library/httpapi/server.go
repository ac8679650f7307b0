package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

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
	"github.com/alexandrebha/cybook/library/shared/shell"
)

const maxBodyBytes = 64 << 10

// Handlers are the use cases served by the API. Core handlers and their observable wrappers both fit.
type Handlers struct {
	BorrowBook   shell.CoreCommandHandler[borrowbook.Command]
	ReturnBook   shell.CoreCommandHandler[returnbook.Command]
	AddBookCopy  shell.CoreCommandHandler[addbookcopy.Command]
	RegisterUser shell.CoreCommandHandler[registeruser.Command]
	UpdateUser   shell.CoreCommandHandler[updateuser.Command]

	ActiveLoanCount  shell.CoreQueryHandler[activeloancount.Query, activeloancount.ActiveLoans]
	OverdueLoans     shell.CoreQueryHandler[overdueloans.Query, overdueloans.OverdueLoans]
	TopBorrowed      shell.CoreQueryHandler[topborrowed.Query, topborrowed.Ranking]
	BooksInInventory shell.CoreQueryHandler[booksininventory.Query, booksininventory.BooksInInventory]
	BookDetails      shell.CoreQueryHandler[bookdetails.Query, bookdetails.BookDetails]
	LoansByUser      shell.CoreQueryHandler[loansbyuser.Query, loansbyuser.Loans]
	RegisteredUsers  shell.CoreQueryHandler[registeredusers.Query, registeredusers.RegisteredUsers]
	CatalogSearch    shell.CoreQueryHandler[catalogsearch.Query, catalogsearch.SearchResult]
	LoanHistory      shell.CoreQueryHandler[loanhistory.Query, loanhistory.LoanHistory]
}

// Server routes HTTP requests to the handlers.
type Server struct {
	handlers       Handlers
	router         *chi.Mux
	logger         *slog.Logger
	allowedOrigins []string
	now            func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request logs and server-side failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithClock replaces time.Now as the source of command and query timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a Server with its routes registered.
func NewServer(handlers Handlers, opts ...Option) *Server {
	s := &Server{
		handlers: handlers,
		router:   chi.NewRouter(),
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.allowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Post("/loans", s.handleBorrow)
	s.router.Post("/returns", s.handleReturn)
	s.router.Get("/loans", s.handleListLoans)
	s.router.Get("/overdue", s.handleOverdue)
	s.router.Get("/top", s.handleTopBorrowed)
	s.router.Get("/history", s.handleHistory)
	s.router.Get("/search", s.handleSearch)

	s.router.Route("/books", func(r chi.Router) {
		r.Get("/", s.handleListBooks)
		r.Get("/{id}", s.handleGetBook)
		r.Post("/{id}/copies", s.handleAddCopy)
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleRegisterUser)
		r.Put("/{id}", s.handleUpdateUser)
		r.Get("/{id}/active-loans", s.handleActiveLoans)
		r.Get("/{id}/loans", s.handleUserLoans)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			shell.LogAttrDurationMS, shell.ToMilliseconds(time.Since(start)))
	})
}
