package lending

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lendingapi/internal/platform/postgres"
)

const openPerBookIndex = "lending_records_one_open_per_book"

const selectRecord = `
	SELECT lr.id, lr.active, lr.borrowed_at, lr.returned_at, lr.created_at, lr.updated_at,
	       b.id, b.isbn, b.title, b.author, b.created_at, b.updated_at,
	       br.id, br.name, br.email, br.created_at, br.updated_at
	FROM lending_records lr
	JOIN books b ON b.id = lr.book_id
	JOIN borrowers br ON br.id = lr.borrower_id
`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) FindOpenByBookAndBorrower(ctx context.Context, bookID, borrowerID int64) (Record, error) {
	const query = selectRecord + `
	WHERE lr.book_id = $1 AND lr.borrower_id = $2 AND lr.active = false
	LIMIT 1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanRecord(postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query, bookID, borrowerID))
}

func (r *PostgresRepo) FindOpenByBook(ctx context.Context, bookID int64) (Record, error) {
	const query = selectRecord + `
	WHERE lr.book_id = $1 AND lr.active = false
	LIMIT 1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanRecord(postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query, bookID))
}

// Create relies on the partial unique index: a conflicting insert returns
// no row instead of failing the surrounding transaction.
func (r *PostgresRepo) Create(ctx context.Context, rec *Record) error {
	const query = `
	INSERT INTO lending_records (book_id, borrower_id, active, borrowed_at, created_at, updated_at)
	VALUES ($1, $2, false, $3, $4, $5)
	ON CONFLICT (book_id) WHERE active = false DO NOTHING
	RETURNING id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query,
		rec.Book.ID, rec.Borrower.ID, rec.BorrowedAt, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows), postgres.IsUniqueViolation(err, openPerBookIndex):
		return ErrOpenRecordConflict
	default:
		return err
	}
}

func (r *PostgresRepo) MarkReturned(ctx context.Context, id int64, returnedAt time.Time) error {
	const query = `
	UPDATE lending_records
	SET active = true, returned_at = $2, updated_at = $2
	WHERE id = $1 AND active = false
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := postgres.Conn(ctx, r.db).Exec(timeoutCtx, query, id, returnedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoOpenRecord
	}
	return nil
}

func (r *PostgresRepo) ListByBook(ctx context.Context, bookID int64) ([]Record, error) {
	const query = selectRecord + `
	WHERE lr.book_id = $1
	ORDER BY lr.borrowed_at DESC, lr.id DESC`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := postgres.Conn(ctx, r.db).Query(timeoutCtx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec    Record
		active bool
	)
	err := row.Scan(
		&rec.ID, &active, &rec.BorrowedAt, &rec.ReturnedAt, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.Book.ID, &rec.Book.ISBN, &rec.Book.Title, &rec.Book.Author, &rec.Book.CreatedAt, &rec.Book.UpdatedAt,
		&rec.Borrower.ID, &rec.Borrower.Name, &rec.Borrower.Email, &rec.Borrower.CreatedAt, &rec.Borrower.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNoOpenRecord
		}
		return Record{}, err
	}
	rec.Status = StatusFromActive(active)
	return rec, nil
}
