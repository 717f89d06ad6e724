package memory

import (
	"context"

	"lendingapi/internal/borrower"
)

type BorrowerRepo struct {
	s *Store
}

// Create enforces email uniqueness the way the database constraint does.
func (r *BorrowerRepo) Create(ctx context.Context, b *borrower.Borrower) error {
	return r.s.do(ctx, func(st *state) error {
		for _, existing := range st.borrowers {
			if existing.Email == b.Email {
				return borrower.ErrAlreadyExists
			}
		}
		st.nextBorrowerID++
		b.ID = st.nextBorrowerID
		st.borrowers[b.ID] = *b
		return nil
	})
}

func (r *BorrowerRepo) GetByEmail(ctx context.Context, email string) (out borrower.Borrower, err error) {
	err = r.s.do(ctx, func(st *state) error {
		for _, b := range st.borrowers {
			if b.Email == email {
				out = b
				return nil
			}
		}
		return borrower.ErrNotFound
	})
	return out, err
}

func (r *BorrowerRepo) GetByID(ctx context.Context, id int64) (out borrower.Borrower, err error) {
	err = r.s.do(ctx, func(st *state) error {
		b, ok := st.borrowers[id]
		if !ok {
			return borrower.ErrNotFound
		}
		out = b
		return nil
	})
	return out, err
}
