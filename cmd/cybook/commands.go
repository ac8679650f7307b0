package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

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

// newRootCommand builds a fresh command tree. The shell builds one per input line,
// so flag values never leak from one line to the next.
func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cybook",
		Short:         "Library loans and inventory",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Annotations:   map[string]string{annotationOffline: "true"},
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
			}

			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationOffline] == "true" || cmd.Name() == "help" {
				return nil
			}

			return a.connect(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Database.URL, "database-url", a.cfg.Database.URL, "PostgreSQL connection string")
	flags.StringVar(&a.cfg.Database.Adapter, "adapter", a.cfg.Database.Adapter, "database adapter: pgx.pool, sql.db or sqlx.db")
	flags.StringVar(&a.cfg.Log.Level, "log-level", a.cfg.Log.Level, "log level: debug, info, warn or error")
	flags.StringVar(&a.cfg.Log.Format, "log-format", a.cfg.Log.Format, "log format: text or json")

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.AddCommand(
		newBorrowCommand(a),
		newReturnCommand(a),
		newActiveCommand(a),
		newOverdueCommand(a),
		newTopCommand(a),
		newBooksCommand(a),
		newBookCommand(a),
		newAddCopyCommand(a),
		newUsersCommand(a),
		newLoansCommand(a),
		newHistoryCommand(a),
		newSearchCommand(a),
		newServeCommand(a),
		newShellCommand(a),
		newInitDBCommand(a),
	)

	return root
}

// annotationOffline marks commands that run without a database connection.
const annotationOffline = "offline"

func newBorrowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow USER_ID BOOK_ID",
		Short: "Lend one copy of a book to a user",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}

			now := a.now()

			result, err := a.handlers.BorrowBook.Handle(cmd.Context(), borrowbook.BuildCommand(userID, args[1], now))
			if err != nil {
				return err
			}

			cmd.Printf("Loan %d created, due %s. %d copies left on the shelf.\n",
				result.LoanID, circulation.DueDateFor(now).Format(dateLayout), result.Stock)

			return nil
		},
	}
}

func newReturnCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return USER_ID BOOK_ID",
		Short: "Take back a borrowed copy",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}

			result, err := a.handlers.ReturnBook.Handle(cmd.Context(), returnbook.BuildCommand(userID, args[1], a.now()))
			if err != nil {
				return err
			}

			cmd.Printf("Loan %d returned.\n", result.LoanID)

			return nil
		},
	}
}

func newActiveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "active USER_ID",
		Short: "Count the active loans of a user",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}

			result, err := a.handlers.ActiveLoanCount.Handle(cmd.Context(), activeloancount.BuildQuery(userID))
			if err != nil {
				return err
			}

			cmd.Printf("User %d has %d active loans, %d more allowed.\n", result.UserID, result.Count, result.Remaining)

			return nil
		},
	}
}

func newOverdueCommand(a *app) *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List active loans past their due date",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := overdueloans.BuildQuery(a.now())
			if countOnly {
				query = overdueloans.BuildCountQuery(a.now())
			}

			result, err := a.handlers.OverdueLoans.Handle(cmd.Context(), query)
			if err != nil {
				return err
			}

			if countOnly {
				cmd.Printf("%d overdue loans.\n", result.Count)
				return nil
			}

			renderOverdue(cmd.OutOrStdout(), result.Loans)

			return nil
		},
	}

	cmd.Flags().BoolVar(&countOnly, "count", false, "only print the number of overdue loans")

	return cmd
}

func newTopCommand(a *app) *cobra.Command {
	var days, limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank the most borrowed books of a trailing window",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.handlers.TopBorrowed.Handle(cmd.Context(), topborrowed.BuildQuery(days, limit, a.now()))
			if err != nil {
				return err
			}

			renderRanking(cmd.OutOrStdout(), result)

			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", circulation.DefaultRankingWindowDays, "window length in days")
	cmd.Flags().IntVar(&limit, "limit", circulation.DefaultRankingLimit, "number of books to rank")

	return cmd
}

func newBooksCommand(a *app) *cobra.Command {
	var withMetadata bool

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the inventory",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.handlers.BooksInInventory.Handle(cmd.Context(), booksininventory.BuildQuery(withMetadata))
			if err != nil {
				return err
			}

			renderBooks(cmd.OutOrStdout(), result, withMetadata)

			return nil
		},
	}

	cmd.Flags().BoolVar(&withMetadata, "metadata", false, "resolve titles and authors through the catalog")

	return cmd
}

func newBookCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "book BOOK_ID",
		Short: "Show the catalog record and shelf status of a book",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.handlers.BookDetails.Handle(cmd.Context(), bookdetails.BuildQuery(args[0], a.now()))
			if err != nil {
				return err
			}

			renderBookDetails(cmd.OutOrStdout(), result)

			return nil
		},
	}
}

func newAddCopyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-copy BOOK_ID",
		Short: "Put one more copy of a book on the shelf",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.handlers.AddBookCopy.Handle(cmd.Context(), addbookcopy.BuildCommand(args[0], a.now()))
			if err != nil {
				return err
			}

			cmd.Printf("%s now has %d copies on the shelf.\n", strings.TrimSpace(args[0]), result.Stock)

			return nil
		},
	}
}

type profileFlags struct {
	lastName  string
	firstName string
	email     string
	address   string
	phone     string
}

func (p *profileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&p.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&p.email, "email", "", "email address")
	cmd.Flags().StringVar(&p.address, "address", "", "postal address")
	cmd.Flags().StringVar(&p.phone, "phone", "", "phone number")
}

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Register, update and list users",
	}

	cmd.AddCommand(newRegisterUserCommand(a), newUpdateUserCommand(a), newListUsersCommand(a))

	return cmd
}

func newRegisterUserCommand(a *app) *cobra.Command {
	var profile profileFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			command := registeruser.BuildCommand(
				profile.lastName, profile.firstName, profile.email, profile.address, profile.phone, a.now())

			result, err := a.handlers.RegisterUser.Handle(cmd.Context(), command)
			if err != nil {
				return err
			}

			cmd.Printf("User %d registered.\n", result.CreatedID)

			return nil
		},
	}

	profile.bind(cmd)

	return cmd
}

func newUpdateUserCommand(a *app) *cobra.Command {
	var profile profileFlags

	cmd := &cobra.Command{
		Use:   "update USER_ID",
		Short: "Replace the profile of a user",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}

			command := updateuser.BuildCommand(
				userID, profile.lastName, profile.firstName, profile.email, profile.address, profile.phone, a.now())

			result, err := a.handlers.UpdateUser.Handle(cmd.Context(), command)
			if err != nil {
				return err
			}

			if result.Idempotent {
				cmd.Printf("User %d is unchanged.\n", userID)
				return nil
			}

			cmd.Printf("User %d updated.\n", userID)

			return nil
		},
	}

	profile.bind(cmd)

	return cmd
}

func newListUsersCommand(a *app) *cobra.Command {
	var activeLoansOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := registeredusers.BuildQuery()
			if activeLoansOnly {
				query = query.WithActiveLoansOnly()
			}

			result, err := a.handlers.RegisteredUsers.Handle(cmd.Context(), query)
			if err != nil {
				return err
			}

			renderUsers(cmd.OutOrStdout(), result.Users)

			return nil
		},
	}

	cmd.Flags().BoolVar(&activeLoansOnly, "active-loans", false, "only users with at least one active loan")

	return cmd
}

func newLoansCommand(a *app) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "loans [USER_ID]",
		Short: "List the loans of a user, or all loans",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var userID circulation.UserID
			if len(args) == 1 {
				var err error
				if userID, err = parseUserID(args[0]); err != nil {
					return err
				}
			}

			result, err := a.handlers.LoansByUser.Handle(cmd.Context(), loansbyuser.BuildQuery(userID, activeOnly, a.now()))
			if err != nil {
				return err
			}

			renderLoans(cmd.OutOrStdout(), result.Loans)

			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only loans that are not returned")

	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	var (
		userID circulation.UserID
		bookID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the journal of loan decisions",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.handlers.LoanHistory.Handle(cmd.Context(), loanhistory.BuildQuery(userID, bookID, limit))
			if err != nil {
				return err
			}

			renderHistory(cmd.OutOrStdout(), result.Entries)

			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "only decisions about this user")
	cmd.Flags().StringVar(&bookID, "book", "", "only decisions about this book")
	cmd.Flags().IntVar(&limit, "limit", loanhistory.DefaultLimit, "maximum number of entries")

	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search TEXT...",
		Short: "Search the national catalog",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.handlers.CatalogSearch.Handle(cmd.Context(), catalogsearch.BuildQuery(strings.Join(args, " ")))
			if err != nil {
				return err
			}

			renderSearch(cmd.OutOrStdout(), result)

			return nil
		},
	}
}

func newInitDBCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the tables and indexes if they do not exist",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.engine == nil {
				return errNoEngine
			}

			if err := a.engine.CreateTables(cmd.Context()); err != nil {
				return err
			}

			cmd.Printf("Tables ready: %s.\n", strings.Join(a.engine.TableNames(), ", "))

			return nil
		},
	}
}

func parseUserID(raw string) (circulation.UserID, error) {
	userID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.Join(circulation.ErrInvalidArgument, fmt.Errorf("user id %q must be a positive integer", raw))
	}

	return userID, nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

func rangeArgs(minArgs, maxArgs int) cobra.PositionalArgs {
	return usageArgs(cobra.RangeArgs(minArgs, maxArgs))
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %s: %w", errUsage, cmd.CommandPath(), err)
		}

		return nil
	}
}
