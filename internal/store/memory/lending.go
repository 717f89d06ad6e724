package memory

import (
	"context"
	"sort"
	"time"

	"lendingapi/internal/lending"
)

type recordRow struct {
	id         int64
	bookID     int64
	borrowerID int64
	status     lending.Status
	borrowedAt time.Time
	returnedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

type LendingRepo struct {
	s *Store
}

func (st *state) hydrate(row recordRow) lending.Record {
	return lending.Record{
		ID:         row.id,
		Book:       st.books[row.bookID],
		Borrower:   st.borrowers[row.borrowerID],
		Status:     row.status,
		BorrowedAt: row.borrowedAt,
		ReturnedAt: row.returnedAt,
		CreatedAt:  row.createdAt,
		UpdatedAt:  row.updatedAt,
	}
}

func (r *LendingRepo) FindOpenByBookAndBorrower(ctx context.Context, bookID, borrowerID int64) (out lending.Record, err error) {
	err = r.s.do(ctx, func(st *state) error {
		id, ok := st.openByBook[bookID]
		if !ok || st.records[id].borrowerID != borrowerID {
			return lending.ErrNoOpenRecord
		}
		out = st.hydrate(st.records[id])
		return nil
	})
	return out, err
}

func (r *LendingRepo) FindOpenByBook(ctx context.Context, bookID int64) (out lending.Record, err error) {
	err = r.s.do(ctx, func(st *state) error {
		id, ok := st.openByBook[bookID]
		if !ok {
			return lending.ErrNoOpenRecord
		}
		out = st.hydrate(st.records[id])
		return nil
	})
	return out, err
}

// Create refuses a second open record for a book, mirroring the partial
// unique index of the database schema.
func (r *LendingRepo) Create(ctx context.Context, rec *lending.Record) error {
	return r.s.do(ctx, func(st *state) error {
		if _, open := st.openByBook[rec.Book.ID]; open {
			return lending.ErrOpenRecordConflict
		}
		st.nextRecordID++
		rec.ID = st.nextRecordID
		st.records[rec.ID] = recordRow{
			id:         rec.ID,
			bookID:     rec.Book.ID,
			borrowerID: rec.Borrower.ID,
			status:     lending.StatusOpen,
			borrowedAt: rec.BorrowedAt,
			createdAt:  rec.CreatedAt,
			updatedAt:  rec.UpdatedAt,
		}
		st.openByBook[rec.Book.ID] = rec.ID
		return nil
	})
}

func (r *LendingRepo) MarkReturned(ctx context.Context, id int64, returnedAt time.Time) error {
	return r.s.do(ctx, func(st *state) error {
		row, ok := st.records[id]
		if !ok || row.status != lending.StatusOpen {
			return lending.ErrNoOpenRecord
		}
		row.status = lending.StatusReturned
		row.returnedAt = &returnedAt
		row.updatedAt = returnedAt
		st.records[id] = row
		delete(st.openByBook, row.bookID)
		return nil
	})
}

func (r *LendingRepo) ListByBook(ctx context.Context, bookID int64) (out []lending.Record, err error) {
	err = r.s.do(ctx, func(st *state) error {
		out = []lending.Record{}
		for _, row := range st.records {
			if row.bookID == bookID {
				out = append(out, st.hydrate(row))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].BorrowedAt.Equal(out[j].BorrowedAt) {
				return out[i].BorrowedAt.After(out[j].BorrowedAt)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}
