package borrower

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lendingapi/internal/platform/postgres"
)

const emailConstraint = "borrowers_email_key"

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

func (r *PostgresRepo) Create(ctx context.Context, b *Borrower) error {
	const query = `
	INSERT INTO borrowers (name, email, created_at, updated_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query, b.Name, b.Email, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	if postgres.IsUniqueViolation(err, emailConstraint) {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (Borrower, error) {
	const query = `
	SELECT id, name, email, created_at, updated_at
	FROM borrowers
	WHERE email = $1
	LIMIT 1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBorrower(postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query, email))
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Borrower, error) {
	const query = `
	SELECT id, name, email, created_at, updated_at
	FROM borrowers WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBorrower(postgres.Conn(ctx, r.db).QueryRow(timeoutCtx, query, id))
}

func scanBorrower(row pgx.Row) (Borrower, error) {
	var b Borrower
	if err := row.Scan(&b.ID, &b.Name, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Borrower{}, ErrNotFound
		}
		return Borrower{}, err
	}
	return b, nil
}
