package borrower

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=borrower

type Repository interface {
	// Create inserts b and fills its id. A duplicate email yields ErrAlreadyExists.
	Create(ctx context.Context, b *Borrower) error
	GetByEmail(ctx context.Context, email string) (Borrower, error)
	GetByID(ctx context.Context, id int64) (Borrower, error)
}
