package book

import (
	"fmt"
	"time"

	"lendingapi/internal/apperr"
)

var (
	// ErrNotFound is returned when a book id does not resolve.
	ErrNotFound = apperr.New(apperr.ErrNotFound, "BOOK_NOT_FOUND", "Invalid Book")

	// ErrConflictingCatalogData is the parent of every ConflictingCatalogDataError.
	ErrConflictingCatalogData = apperr.New(apperr.ErrBusinessRule, "CONFLICTING_CATALOG_DATA", "conflicting catalog data")
)

// Book is one physical copy in the catalog. Several books may share an ISBN.
type Book struct {
	ID        int64
	ISBN      string
	Title     string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConflictingCatalogDataError reports a registration whose ISBN is already
// used by a book with a different title or author.
type ConflictingCatalogDataError struct {
	ISBN     string
	Field    string // "title" or "author"
	Existing string
}

func (e *ConflictingCatalogDataError) Error() string {
	return fmt.Sprintf("Multiple books with the same ISBN number must have same %s. There is already ISBN Number(%s) with %s (%s).",
		e.Field, e.ISBN, e.Field, e.Existing)
}

func (e *ConflictingCatalogDataError) Unwrap() error { return ErrConflictingCatalogData }

func (e *ConflictingCatalogDataError) Code() string { return ErrConflictingCatalogData.Code() }
