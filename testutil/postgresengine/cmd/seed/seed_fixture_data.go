// Command seed fills the configured database with a deterministic, realistic data set:
// books with a few copies each, registered users, a loan history and some currently active
// and overdue loans. Existing rows are truncated.
//
//	go run ./testutil/postgresengine/cmd/seed -books 2000 -users 500
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/postgresengine"
	"github.com/alexandrebha/cybook/library/shared/shell/config"
)

const (
	maxCopiesPerBook = 5
	historyPerUser   = 8
)

type Config struct {
	NumBooks    int
	NumUsers    int
	HistoryDays int
	Seed        uint64
}

type fixtures struct {
	books [][]any
	users [][]any
	loans [][]any
}

var (
	lastNames  = []string{"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy", "Moreau", "Simon", "Laurent", "Lefebvre", "Michel", "Garcia", "David"}
	firstNames = []string{"Jeanne", "Louis", "Camille", "Hugo", "Emma", "Jules", "Alice", "Lucas", "Chloé", "Arthur", "Léa", "Gabriel"}
	streets    = []string{"rue de la Paix", "avenue Victor Hugo", "boulevard Voltaire", "rue Lafayette", "place de la République", "rue des Écoles"}
	cities     = []string{"Paris", "Lyon", "Marseille", "Bordeaux", "Lille", "Nantes"}
)

func main() {
	cfg := parseFlags()

	if err := Seed(context.Background(), cfg); err != nil {
		log.Fatalf("Error seeding fixture data: %v", err)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.IntVar(&cfg.NumBooks, "books", 1000, "number of titles")
	flag.IntVar(&cfg.NumUsers, "users", 300, "number of users")
	flag.IntVar(&cfg.HistoryDays, "history-days", 90, "spread of the returned loans in days")
	flag.Uint64Var(&cfg.Seed, "seed", 42, "random seed, the same seed yields the same data")
	flag.Parse()

	return cfg
}

func Seed(ctx context.Context, cfg Config) error {
	startTime := time.Now()

	fmt.Println("🚀 Starting fixture data seeding")
	fmt.Printf("📊 %s books, %s users, seed %d\n", formatNumber(cfg.NumBooks), formatNumber(cfg.NumUsers), cfg.Seed)
	fmt.Println()

	processConfig, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("🔗\tConnecting to database...")
	pool, err := config.OpenPGXPool(ctx, processConfig.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()
	fmt.Println(" ✅")

	engine, err := postgresengine.NewEngineFromPGXPool(pool)
	if err != nil {
		return err
	}

	fmt.Printf("🧱\tCreating tables...")
	if err := engine.CreateTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	fmt.Println(" ✅")

	fmt.Printf("🎲\tGenerating rows...")
	data := generate(cfg, time.Now())
	fmt.Printf(" ✅ %s loans\n", formatNumber(len(data.loans)))

	if err := load(ctx, pool, engine.TableNames(), data); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Seeding completed! 🎉\n")
	fmt.Printf("Total time: %v ⏱️\n", time.Since(startTime).Round(time.Millisecond))

	return nil
}

// generate builds the rows. Every user ends with at most MaxActiveLoans active loans
// and no book ever has more copies out than it owns.
func generate(cfg Config, now time.Time) fixtures {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	data := fixtures{}

	bookIDs := make([]string, cfg.NumBooks)
	copies := make(map[string]int, cfg.NumBooks)
	onShelf := make(map[string]int, cfg.NumBooks)

	for i := range bookIDs {
		bookIDs[i] = isbn13(978_000_000_000 + int64(i)*7919)
		copies[bookIDs[i]] = 1 + rng.IntN(maxCopiesPerBook)
		onShelf[bookIDs[i]] = copies[bookIDs[i]]
	}

	for userID := int64(1); userID <= int64(cfg.NumUsers); userID++ {
		last := lastNames[rng.IntN(len(lastNames))]
		first := firstNames[rng.IntN(len(firstNames))]

		data.users = append(data.users, []any{
			userID,
			last,
			first,
			fmt.Sprintf("%s.%s.%d@example.org", strings.ToLower(first), strings.ToLower(last), userID),
			fmt.Sprintf("%d %s, %s", 1+rng.IntN(120), streets[rng.IntN(len(streets))], cities[rng.IntN(len(cities))]),
			fmt.Sprintf("06%08d", rng.IntN(100_000_000)),
		})

		for range rng.IntN(historyPerUser) {
			loanDate := now.Add(-time.Duration(circulation.LoanPeriod.Hours()+float64(rng.IntN(cfg.HistoryDays*24))) * time.Hour)
			data.loans = append(data.loans, loanRow(userID, bookIDs[rng.IntN(len(bookIDs))], loanDate, true))
		}

		for range rng.IntN(circulation.MaxActiveLoans + 1) {
			bookID := bookIDs[rng.IntN(len(bookIDs))]
			if onShelf[bookID] == 0 {
				continue
			}

			onShelf[bookID]--

			// about a third of the active loans are overdue
			loanDate := now.Add(-time.Duration(rng.IntN(21*24)) * time.Hour)
			data.loans = append(data.loans, loanRow(userID, bookID, loanDate, false))
		}
	}

	for _, bookID := range bookIDs {
		data.books = append(data.books, []any{bookID, onShelf[bookID]})
	}

	return data
}

func loanRow(userID circulation.UserID, bookID circulation.BookID, loanDate time.Time, returned bool) []any {
	loanDate = circulation.ToStoreTime(loanDate)

	return []any{userID, bookID, loanDate, circulation.DueDateFor(loanDate), returned}
}

// load replaces the table contents in one transaction with COPY.
// tableNames is ordered journal, loans, users, books.
func load(ctx context.Context, pool *pgxpool.Pool, tableNames []string, data fixtures) error {
	journal, loans, users, books := identifier(tableNames[0]), identifier(tableNames[1]), identifier(tableNames[2]), identifier(tableNames[3])

	fmt.Printf("🔄\tStarting transaction...")
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // ignored if already committed
	}()
	fmt.Println(" ✅")

	fmt.Printf("🧹\tClearing existing data...")
	truncate := fmt.Sprintf("TRUNCATE TABLE %s, %s, %s, %s RESTART IDENTITY",
		journal.Sanitize(), loans.Sanitize(), users.Sanitize(), books.Sanitize())
	if _, err := tx.Exec(ctx, truncate); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	fmt.Println(" ✅")

	steps := []struct {
		name    string
		table   pgx.Identifier
		columns []string
		rows    [][]any
	}{
		{"books", books, []string{"id", "stock"}, data.books},
		{"users", users, []string{"id", "last_name", "first_name", "email", "address", "phone"}, data.users},
		{"loans", loans, []string{"user_id", "book_id", "loan_date", "due_date", "returned"}, data.loans},
	}

	for _, step := range steps {
		fmt.Printf("📥\tCopying %s...", step.name)
		copyStart := time.Now()

		count, err := tx.CopyFrom(ctx, step.table, step.columns, pgx.CopyFromRows(step.rows))
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", step.name, err)
		}

		fmt.Printf(" ✅ %s rows in %v\n", formatNumber(int(count)), time.Since(copyStart).Round(time.Millisecond))
	}

	fmt.Printf("🔢\tAdvancing user ids...")
	setval := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), GREATEST(count(*), 1)) FROM %s",
		users.Sanitize(), users.Sanitize())
	if _, err := tx.Exec(ctx, setval); err != nil {
		return fmt.Errorf("failed to advance user sequence: %w", err)
	}
	fmt.Println(" ✅")

	fmt.Printf("📊\tUpdating table statistics...")
	for _, table := range []pgx.Identifier{books, users, loans} {
		if _, err := tx.Exec(ctx, "ANALYZE "+table.Sanitize()); err != nil {
			return fmt.Errorf("failed to analyze table: %w", err)
		}
	}
	fmt.Println(" ✅")

	fmt.Printf("💾\tCommitting transaction...")
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	fmt.Println(" ✅")

	return nil
}

func identifier(tableName string) pgx.Identifier {
	return strings.Split(tableName, ".")
}

// isbn13 turns a 12 digit prefix into an ISBN-13 by appending its check digit.
func isbn13(prefix int64) string {
	digits := strconv.FormatInt(prefix, 10)

	sum := 0
	for i, d := range digits {
		weight := 1
		if i%2 == 1 {
			weight = 3
		}

		sum += int(d-'0') * weight
	}

	return digits + strconv.Itoa((10-sum%10)%10)
}

func formatNumber(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
	} else if n >= 100000 {
		return fmt.Sprintf("%.0fK", float64(n)/1000)
	} else if n >= 10000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return strconv.Itoa(n)
}
