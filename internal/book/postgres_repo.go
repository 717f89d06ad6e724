package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lendingapi/internal/platform/postgres"
)

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

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (isbn, title, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query,
		b.ISBN, b.Title, b.Author, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	const query = `
		SELECT id, isbn, title, author, created_at, updated_at
		FROM books
		WHERE id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query, id))
}

func (r *PostgresRepo) FindFirstByISBN(ctx context.Context, isbn string) (Book, error) {
	const query = `
		SELECT id, isbn, title, author, created_at, updated_at
		FROM books
		WHERE isbn = $1
		ORDER BY id
		LIMIT 1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query, isbn))
}

func (r *PostgresRepo) List(ctx context.Context) ([]Book, error) {
	const query = `
		SELECT id, isbn, title, author, created_at, updated_at
		FROM books
		ORDER BY id`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := postgres.Conn(ctx, r.db).Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// LockISBN takes a transaction scoped advisory lock keyed by the ISBN.
// Outside a transaction the lock would be released immediately.
func (r *PostgresRepo) LockISBN(ctx context.Context, isbn string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := postgres.Conn(ctx, r.db).Exec(timeoutCtx, `SELECT pg_advisory_xact_lock(hashtext($1))`, isbn)
	return err
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}
