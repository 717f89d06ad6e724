package borrower

import (
	"time"

	"lendingapi/internal/apperr"
)

var (
	ErrNotFound = apperr.New(apperr.ErrNotFound, "BORROWER_NOT_FOUND", "Invalid Borrower")
	// ErrAlreadyExists is returned for a second borrower with the same email.
	// The service narrows the message to the offending email.
	ErrAlreadyExists = apperr.New(apperr.ErrAlreadyExists, "BORROWER_ALREADY_EXISTS", "Borrower already exists")
)

type Borrower struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
