package lending

import (
	"context"
	"time"

	"lendingapi/internal/book"
	"lendingapi/internal/borrower"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=lending

// Repository stores lending records.
type Repository interface {
	// FindOpenByBookAndBorrower returns the open record for the pair or ErrNoOpenRecord.
	FindOpenByBookAndBorrower(ctx context.Context, bookID, borrowerID int64) (Record, error)
	// FindOpenByBook returns the open record of the book or ErrNoOpenRecord.
	FindOpenByBook(ctx context.Context, bookID int64) (Record, error)
	// Create inserts an open record and fills its id. It returns
	// ErrOpenRecordConflict when the book already has an open record.
	Create(ctx context.Context, r *Record) error
	// MarkReturned closes the open record id. It returns ErrNoOpenRecord when
	// the record is not open anymore.
	MarkReturned(ctx context.Context, id int64, returnedAt time.Time) error
	// ListByBook returns every record of the book, newest first.
	ListByBook(ctx context.Context, bookID int64) ([]Record, error)
}

type BookFinder interface {
	GetByID(ctx context.Context, id int64) (book.Book, error)
}

type BorrowerFinder interface {
	GetByID(ctx context.Context, id int64) (borrower.Borrower, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
