package main

import (
	"log/slog"

	"github.com/alexandrebha/cybook/circulation/postgresengine"
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
	"github.com/alexandrebha/cybook/library/shared/shell/observable"
)

// ledger is everything the use cases need from the store.
// *postgresengine.Engine implements it, and so does the in-memory ledger of the tests.
type ledger interface {
	borrowbook.Ledger
	returnbook.Ledger
	activeloancount.Ledger
	overdueloans.Ledger
	topborrowed.Ledger
	booksininventory.Ledger
	bookdetails.Ledger
	catalogsearch.Ledger
	loansbyuser.Ledger
	registeredusers.Ledger
	loanhistory.Ledger
}

type catalogService interface {
	shell.MetadataLookup
	shell.MetadataSearch
}

// observability bundles the optional collectors. Nil members are simply not wired.
type observability struct {
	logger           *slog.Logger
	contextualLogger shell.ContextualLogger
	metrics          shell.MetricsCollector
	tracing          shell.TracingCollector
}

func (o observability) engineOptions() []postgresengine.Option {
	var options []postgresengine.Option

	if o.logger != nil {
		options = append(options, postgresengine.WithLogger(o.logger))
	}

	if o.contextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(o.contextualLogger))
	}

	if o.metrics != nil {
		options = append(options, postgresengine.WithMetrics(o.metrics))
	}

	if o.tracing != nil {
		options = append(options, postgresengine.WithTracing(o.tracing))
	}

	return options
}

// newHandlers builds every use case on top of store and catalog and wraps each one in its observable wrapper.
func newHandlers(store ledger, catalog catalogService, obs observability) (httpapi.Handlers, error) {
	var (
		handlers httpapi.Handlers
		err      error
	)

	var rankingOptions []topborrowed.Option
	if obs.logger != nil {
		rankingOptions = append(rankingOptions, topborrowed.WithLogger(obs.logger))
	}

	if handlers.BorrowBook, err = observeCommand[borrowbook.Command](borrowbook.NewCommandHandler(store, catalog), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.ReturnBook, err = observeCommand[returnbook.Command](returnbook.NewCommandHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.AddBookCopy, err = observeCommand[addbookcopy.Command](addbookcopy.NewCommandHandler(store, catalog), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.RegisterUser, err = observeCommand[registeruser.Command](registeruser.NewCommandHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.UpdateUser, err = observeCommand[updateuser.Command](updateuser.NewCommandHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.ActiveLoanCount, err = observeQuery[activeloancount.Query, activeloancount.ActiveLoans](
		activeloancount.NewQueryHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.OverdueLoans, err = observeQuery[overdueloans.Query, overdueloans.OverdueLoans](
		overdueloans.NewQueryHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.TopBorrowed, err = observeQuery[topborrowed.Query, topborrowed.Ranking](
		topborrowed.NewQueryHandler(store, catalog, rankingOptions...), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.BooksInInventory, err = observeQuery[booksininventory.Query, booksininventory.BooksInInventory](
		booksininventory.NewQueryHandler(store, catalog), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.BookDetails, err = observeQuery[bookdetails.Query, bookdetails.BookDetails](
		bookdetails.NewQueryHandler(store, catalog), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.LoansByUser, err = observeQuery[loansbyuser.Query, loansbyuser.Loans](
		loansbyuser.NewQueryHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.RegisteredUsers, err = observeQuery[registeredusers.Query, registeredusers.RegisteredUsers](
		registeredusers.NewQueryHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.CatalogSearch, err = observeQuery[catalogsearch.Query, catalogsearch.SearchResult](
		catalogsearch.NewQueryHandler(store, catalog), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.LoanHistory, err = observeQuery[loanhistory.Query, loanhistory.LoanHistory](
		loanhistory.NewQueryHandler(store), obs); err != nil {
		return httpapi.Handlers{}, err
	}

	return handlers, nil
}

func observeCommand[C shell.Command](
	handler shell.CoreCommandHandler[C],
	obs observability,
) (shell.CoreCommandHandler[C], error) {
	var options []observable.CommandOption[C]

	if obs.logger != nil {
		options = append(options, observable.WithCommandLogging[C](obs.logger))
	}

	if obs.contextualLogger != nil {
		options = append(options, observable.WithCommandContextualLogging[C](obs.contextualLogger))
	}

	if obs.metrics != nil {
		options = append(options, observable.WithCommandMetrics[C](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithCommandTracing[C](obs.tracing))
	}

	wrapper, err := observable.NewCommandWrapper(handler, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}

func observeQuery[Q shell.Query, R any](
	handler shell.CoreQueryHandler[Q, R],
	obs observability,
) (shell.CoreQueryHandler[Q, R], error) {
	var options []observable.QueryOption[Q, R]

	if obs.logger != nil {
		options = append(options, observable.WithQueryLogging[Q, R](obs.logger))
	}

	if obs.contextualLogger != nil {
		options = append(options, observable.WithQueryContextualLogging[Q, R](obs.contextualLogger))
	}

	if obs.metrics != nil {
		options = append(options, observable.WithQueryMetrics[Q, R](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithQueryTracing[Q, R](obs.tracing))
	}

	wrapper, err := observable.NewQueryWrapper(handler, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
