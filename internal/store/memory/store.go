// Package memory is an in-process store for development and tests. It
// implements the book, borrower and lending repositories plus the
// transaction contract on top of plain maps.
package memory

import (
	"context"
	"sync"

	"lendingapi/internal/book"
	"lendingapi/internal/borrower"
)

type txKey struct{}

// Store holds all state. A single mutex serializes transactions, so a
// transaction sees no concurrent writes.
type Store struct {
	mu    sync.Mutex
	state state
}

type state struct {
	books      map[int64]book.Book
	borrowers  map[int64]borrower.Borrower
	records    map[int64]recordRow
	openByBook map[int64]int64

	nextBookID     int64
	nextBorrowerID int64
	nextRecordID   int64
}

func New() *Store {
	return &Store{state: state{
		books:      make(map[int64]book.Book),
		borrowers:  make(map[int64]borrower.Borrower),
		records:    make(map[int64]recordRow),
		openByBook: make(map[int64]int64),
	}}
}

func (s state) clone() state {
	c := s
	c.books = make(map[int64]book.Book, len(s.books))
	for k, v := range s.books {
		c.books[k] = v
	}
	c.borrowers = make(map[int64]borrower.Borrower, len(s.borrowers))
	for k, v := range s.borrowers {
		c.borrowers[k] = v
	}
	c.records = make(map[int64]recordRow, len(s.records))
	for k, v := range s.records {
		c.records[k] = v
	}
	c.openByBook = make(map[int64]int64, len(s.openByBook))
	for k, v := range s.openByBook {
		c.openByBook[k] = v
	}
	return c
}

// WithinTx runs fn while holding the store lock. State changes made by fn are
// discarded when it returns an error or panics. Nested calls join the outer
// transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	committed := false
	defer func() {
		if !committed {
			s.state = snapshot
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

// Ping always succeeds; it lets the store stand in for a database in
// readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn against the state, taking the lock unless ctx already belongs
// to a transaction of this store.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(&s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// Books returns the book repository view of the store.
func (s *Store) Books() *BookRepo { return &BookRepo{s: s} }

// Borrowers returns the borrower repository view of the store.
func (s *Store) Borrowers() *BorrowerRepo { return &BorrowerRepo{s: s} }

// Lending returns the lending record repository view of the store.
func (s *Store) Lending() *LendingRepo { return &LendingRepo{s: s} }
