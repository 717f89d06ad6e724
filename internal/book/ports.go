package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id int64) (Book, error)
	// FindFirstByISBN returns the oldest book with the ISBN or ErrNotFound.
	FindFirstByISBN(ctx context.Context, isbn string) (Book, error)
	List(ctx context.Context) ([]Book, error)
	// LockISBN serializes registrations of the same ISBN until the
	// surrounding transaction ends.
	LockISBN(ctx context.Context, isbn string) error
}

// Transactor runs fn in a single transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
