// Package main implements a load generator that borrows, returns and shelves books
// at a configurable rate against the seeded database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/command/addbookcopy"
	"github.com/alexandrebha/cybook/library/features/command/borrowbook"
	"github.com/alexandrebha/cybook/library/features/command/returnbook"
	"github.com/alexandrebha/cybook/library/shared/shell"
	"github.com/alexandrebha/cybook/library/shared/shell/observable"
)

const (
	scenarioShelving = "shelving"
	scenarioLending  = "lending"
	operationTimeout = 5 * time.Second
)

// Ledger is what the load generator needs from the store.
type Ledger interface {
	borrowbook.Ledger
	returnbook.Ledger
	addbookcopy.Ledger
	GetAllBooks(ctx context.Context) ([]circulation.Book, error)
	ListUsers(ctx context.Context) ([]circulation.User, error)
}

// staticCatalog resolves every identifier, so that the load never reaches the real catalog.
type staticCatalog struct{}

func (staticCatalog) Lookup(_ context.Context, id string) (circulation.Metadata, error) {
	return circulation.Metadata{ISBN: id, Title: "Load test title " + id, Author: "Load, Test"}, nil
}

// LoadGenerator fires borrow, return and add-copy commands against the books and users
// that exist when it starts.
type LoadGenerator struct {
	config Config
	books  []circulation.BookID
	users  []circulation.UserID

	addBookCopyHandler shell.CoreCommandHandler[addbookcopy.Command]
	borrowBookHandler  shell.CoreCommandHandler[borrowbook.Command]
	returnBookHandler  shell.CoreCommandHandler[returnbook.Command]

	ticker   *time.Ticker
	stopChan chan struct{}
	wg       sync.WaitGroup

	requestCount  int64
	rejectedCount int64
	errorCount    int64
	startTime     time.Time
	mu            sync.RWMutex
}

// NewLoadGenerator loads the existing books and users and builds the observable command handlers.
func NewLoadGenerator(ctx context.Context, ledger Ledger, config Config, obsConfig ObservabilityConfig) (*LoadGenerator, error) {
	books, err := ledger.GetAllBooks(ctx)
	if err != nil {
		return nil, err
	}

	users, err := ledger.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	if len(books) == 0 || len(users) == 0 {
		return nil, errors.New("no books or no users found, run the seed command first")
	}

	lg := &LoadGenerator{
		config:   config,
		stopChan: make(chan struct{}),
	}

	for _, book := range books {
		lg.books = append(lg.books, book.ID)
	}

	for _, user := range users {
		lg.users = append(lg.users, user.ID)
	}

	if lg.addBookCopyHandler, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[addbookcopy.Command](addbookcopy.NewCommandHandler(ledger, staticCatalog{})),
		commandOptions[addbookcopy.Command](obsConfig)...); err != nil {
		return nil, err
	}

	if lg.borrowBookHandler, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[borrowbook.Command](borrowbook.NewCommandHandler(ledger, staticCatalog{})),
		commandOptions[borrowbook.Command](obsConfig)...); err != nil {
		return nil, err
	}

	if lg.returnBookHandler, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[returnbook.Command](returnbook.NewCommandHandler(ledger)),
		commandOptions[returnbook.Command](obsConfig)...); err != nil {
		return nil, err
	}

	return lg, nil
}

func commandOptions[C shell.Command](obsConfig ObservabilityConfig) []observable.CommandOption[C] {
	var options []observable.CommandOption[C]
	if obsConfig.MetricsCollector != nil {
		options = append(options, observable.WithCommandMetrics[C](obsConfig.MetricsCollector))
	}
	if obsConfig.TracingCollector != nil {
		options = append(options, observable.WithCommandTracing[C](obsConfig.TracingCollector))
	}
	if obsConfig.ContextualLogger != nil {
		options = append(options, observable.WithCommandContextualLogging[C](obsConfig.ContextualLogger))
	}
	if obsConfig.Logger != nil {
		options = append(options, observable.WithCommandLogging[C](obsConfig.Logger))
	}
	return options
}

// Start begins load generation with the configured request rate.
// It runs until the context is cancelled or Stop() is called.
func (lg *LoadGenerator) Start(ctx context.Context) error {
	lg.mu.Lock()
	lg.startTime = time.Now()
	lg.requestCount = 0
	lg.rejectedCount = 0
	lg.errorCount = 0
	lg.mu.Unlock()

	interval := time.Second / time.Duration(lg.config.Rate)
	lg.ticker = time.NewTicker(interval)
	defer lg.ticker.Stop()

	log.Printf("Load generator starting with %d requests/second (interval: %v), %d books, %d users",
		lg.config.Rate, interval, len(lg.books), len(lg.users))

	lg.wg.Add(1)
	go lg.metricsReporter(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Load generator stopping due to context cancellation")
			return ctx.Err()

		case <-lg.stopChan:
			log.Printf("Load generator stopping due to stop signal")
			return nil

		case <-lg.ticker.C:
			lg.wg.Add(1)
			go lg.executeScenario(ctx)
		}
	}
}

// Stop waits for in-flight scenarios, bounded by ctx.
func (lg *LoadGenerator) Stop(ctx context.Context) error {
	close(lg.stopChan)

	done := make(chan struct{})
	go func() {
		lg.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		lg.logStats("Final stats")
		return nil
	case <-ctx.Done():
		lg.logStats("Final stats")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// executeScenario runs one scenario. Domain rejections such as an out of stock book
// are expected under random load and only counted.
func (lg *LoadGenerator) executeScenario(ctx context.Context) {
	defer lg.wg.Done()

	opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	scenarioType := lg.selectScenario(rand.IntN(100))

	var err error
	switch scenarioType {
	case scenarioShelving:
		_, err = lg.addBookCopyHandler.Handle(opCtx, addbookcopy.BuildCommand(lg.randomBook(), time.Now()))
	case scenarioLending:
		err = lg.runLendingScenario(opCtx)
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	lg.requestCount++

	switch {
	case err == nil:
	case shell.IsDomainRejection(err):
		lg.rejectedCount++
	default:
		lg.errorCount++
		log.Printf("Scenario error (%s): %v", scenarioType, err)
	}
}

// selectScenario maps r in [0, 100) onto the configured weights.
func (lg *LoadGenerator) selectScenario(r int) string {
	if r < lg.config.ScenarioWeights[0] {
		return scenarioShelving
	}

	return scenarioLending
}

func (lg *LoadGenerator) runLendingScenario(ctx context.Context) error {
	userID, bookID := lg.randomUser(), lg.randomBook()

	if rand.IntN(2) == 0 {
		_, err := lg.borrowBookHandler.Handle(ctx, borrowbook.BuildCommand(userID, bookID, time.Now()))
		return err
	}

	_, err := lg.returnBookHandler.Handle(ctx, returnbook.BuildCommand(userID, bookID, time.Now()))

	return err
}

func (lg *LoadGenerator) randomBook() circulation.BookID {
	return lg.books[rand.IntN(len(lg.books))]
}

func (lg *LoadGenerator) randomUser() circulation.UserID {
	return lg.users[rand.IntN(len(lg.users))]
}

func (lg *LoadGenerator) metricsReporter(ctx context.Context) {
	defer lg.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-lg.stopChan:
			return
		case <-ticker.C:
			lg.logStats("Stats")
		}
	}
}

func (lg *LoadGenerator) logStats(prefix string) {
	lg.mu.RLock()
	duration := time.Since(lg.startTime)
	requests := lg.requestCount
	rejected := lg.rejectedCount
	failed := lg.errorCount
	lg.mu.RUnlock()

	if duration <= 0 || requests == 0 {
		return
	}

	log.Printf("%s: %d requests in %v (%.1f req/s), %d rejected, %d errors (%.1f%%), %d goroutines",
		prefix,
		requests,
		duration.Truncate(time.Second),
		float64(requests)/duration.Seconds(),
		rejected,
		failed,
		float64(failed)/float64(requests)*100,
		runtime.NumGoroutine())
}
