// Package lending is the ledger of borrow and return events. It guarantees
// that a book has at most one open lending record at any time.
package lending

import (
	"errors"
	"fmt"
	"time"

	"lendingapi/internal/apperr"
	"lendingapi/internal/book"
	"lendingapi/internal/borrower"
)

var (
	ErrAlreadyBorrowedBySameParty = apperr.New(apperr.ErrBusinessRule, "ALREADY_BORROWED_BY_SAME_PARTY", "Borrower Already Borrowed the book.")
	ErrAlreadyBorrowedByOther     = apperr.New(apperr.ErrBusinessRule, "ALREADY_BORROWED_BY_OTHER", "Another Borrower Already Borrowed the book.")
	// ErrNoOpenBorrow is the parent of every NoOpenBorrowError.
	ErrNoOpenBorrow = apperr.New(apperr.ErrBusinessRule, "NO_OPEN_BORROW", "no open borrow record")
)

// Errors reported by a Repository.
var (
	// ErrOpenRecordConflict means the book already has an open record.
	ErrOpenRecordConflict = errors.New("lending: book already has an open record")
	// ErrNoOpenRecord means no open record matched.
	ErrNoOpenRecord = errors.New("lending: no open record")
)

// NoOpenBorrowError is returned by Return when the pair has no open record.
type NoOpenBorrowError struct {
	BookID     int64
	BorrowerID int64
}

func (e *NoOpenBorrowError) Error() string {
	return fmt.Sprintf("Borrow record not found for bookId=%d and borrowerId=%d", e.BookID, e.BorrowerID)
}

func (e *NoOpenBorrowError) Unwrap() error { return ErrNoOpenBorrow }

func (e *NoOpenBorrowError) Code() string { return ErrNoOpenBorrow.Code() }

// Status is the state of a lending record.
type Status int

const (
	StatusOpen Status = iota + 1
	StatusReturned
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusReturned:
		return "RETURNED"
	default:
		return "UNKNOWN"
	}
}

// Active is the stored flag for s. The flag is inverted: false means the
// book is still out.
func (s Status) Active() bool { return s == StatusReturned }

// StatusFromActive decodes the stored flag.
func StatusFromActive(active bool) Status {
	if active {
		return StatusReturned
	}
	return StatusOpen
}

// Record is one borrow of one book by one borrower. Book and Borrower are
// read-only copies taken when the record was loaded.
type Record struct {
	ID         int64
	Book       book.Book
	Borrower   borrower.Borrower
	Status     Status
	BorrowedAt time.Time
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r Record) IsOpen() bool { return r.Status == StatusOpen }
