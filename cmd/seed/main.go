package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lendingapi/internal/apperr"
	"lendingapi/internal/book"
	"lendingapi/internal/borrower"
	"lendingapi/internal/config"
	"lendingapi/internal/platform/logging"
	"lendingapi/internal/platform/postgres"
)

type catalogEntry struct {
	ISBN, Title, Author string
}

var catalog = []catalogEntry{
	{"978-0-13-468599-1", "The Go Programming Language", "Alan Donovan"},
	{"978-0-201-63361-0", "Design Patterns", "Erich Gamma"},
	{"978-0-262-03384-8", "Introduction to Algorithms", "Thomas Cormen"},
	{"978-1-4493-7332-0", "Designing Data-Intensive Applications", "Martin Kleppmann"},
	{"978-0-13-235088-4", "Clean Code", "Robert Martin"},
	{"978-0-596-51774-8", "JavaScript: The Good Parts", "Douglas Crockford"},
}

func main() {
	config.LoadEnvFiles()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		copies    int
		borrowers int
	)
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Register sample books and borrowers",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pool, err := postgres.Open(ctx, cfg.DatabaseDSN, 5*time.Second)
			if err != nil {
				return fmt.Errorf("connect to %s: %w", config.RedactDSN(cfg.DatabaseDSN), err)
			}
			defer pool.Close()

			books := book.NewService(book.NewPostgresRepo(pool, cfg.DBTimeout), postgres.NewTxManager(pool), book.WithLogger(logger))
			people := borrower.NewService(borrower.NewPostgresRepo(pool, cfg.DBTimeout), borrower.WithLogger(logger))

			s := seeder{books: books, borrowers: people, logger: logger}
			nBooks, nBorrowers, err := s.run(ctx, copies, borrowers)
			if err != nil {
				return err
			}
			cmd.Printf("Seeded %d books and %d borrowers\n", nBooks, nBorrowers)
			return nil
		},
	}
	cmd.Flags().IntVar(&copies, "copies", 2, "copies registered per catalog entry")
	cmd.Flags().IntVar(&borrowers, "borrowers", 10, "number of borrowers to register")
	return cmd
}

type bookRegistrar interface {
	Register(ctx context.Context, isbn, title, author string) (book.Book, error)
}

type borrowerRegistrar interface {
	Register(ctx context.Context, name, email string) (borrower.Borrower, error)
}

type seeder struct {
	books     bookRegistrar
	borrowers borrowerRegistrar
	logger    *slog.Logger
}

// run registers the catalog and the borrowers. Borrowers left over from a
// previous run are skipped, so seeding twice only adds book copies.
func (s seeder) run(ctx context.Context, copies, borrowers int) (nBooks, nBorrowers int, err error) {
	for _, entry := range catalog {
		for i := 0; i < copies; i++ {
			if _, err := s.books.Register(ctx, entry.ISBN, entry.Title, entry.Author); err != nil {
				return nBooks, nBorrowers, fmt.Errorf("register %s: %w", entry.ISBN, err)
			}
			nBooks++
		}
	}

	for i := 1; i <= borrowers; i++ {
		email := fmt.Sprintf("reader%03d@example.com", i)
		_, err := s.borrowers.Register(ctx, fmt.Sprintf("Reader %d", i), email)
		if errors.Is(err, apperr.ErrAlreadyExists) {
			s.logger.InfoContext(ctx, "borrower already seeded", "email", email)
			continue
		}
		if err != nil {
			return nBooks, nBorrowers, fmt.Errorf("register %s: %w", email, err)
		}
		nBorrowers++
	}
	return nBooks, nBorrowers, nil
}
