package memory

import (
	"context"
	"sort"

	"lendingapi/internal/book"
)

type BookRepo struct {
	s *Store
}

func (r *BookRepo) Create(ctx context.Context, b *book.Book) error {
	return r.s.do(ctx, func(st *state) error {
		st.nextBookID++
		b.ID = st.nextBookID
		st.books[b.ID] = *b
		return nil
	})
}

func (r *BookRepo) GetByID(ctx context.Context, id int64) (out book.Book, err error) {
	err = r.s.do(ctx, func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return book.ErrNotFound
		}
		out = b
		return nil
	})
	return out, err
}

func (r *BookRepo) FindFirstByISBN(ctx context.Context, isbn string) (out book.Book, err error) {
	err = r.s.do(ctx, func(st *state) error {
		found := false
		for _, b := range st.books {
			if b.ISBN == isbn && (!found || b.ID < out.ID) {
				out, found = b, true
			}
		}
		if !found {
			return book.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (r *BookRepo) List(ctx context.Context) (out []book.Book, err error) {
	err = r.s.do(ctx, func(st *state) error {
		out = make([]book.Book, 0, len(st.books))
		for _, b := range st.books {
			out = append(out, b)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

// LockISBN is a no-op: transactions are already serialized.
func (r *BookRepo) LockISBN(ctx context.Context, _ string) error {
	return ctx.Err()
}
