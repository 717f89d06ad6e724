package book

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lendingapi/internal/platform/logging"
	"lendingapi/internal/platform/telemetry"
)

// Service provides book-related business logic.
type Service struct {
	repo   Repository
	tx     Transactor
	now    func() time.Time
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// NewService creates a new book service.
func NewService(repo Repository, tx Transactor, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		tx:     tx,
		now:    time.Now,
		logger: logging.Discard(),
		tracer: otel.Tracer("lendingapi/internal/book"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a new book record. An ISBN that is already in the catalog
// is accepted only when title and author match the existing record; a new
// record is created either way.
func (s *Service) Register(ctx context.Context, isbn, title, author string) (created Book, err error) {
	ctx, span := s.tracer.Start(ctx, "book.Register", trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer func() { telemetry.EndSpan(span, err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockISBN(ctx, isbn); err != nil {
			return err
		}
		if err := s.checkCatalogConsistency(ctx, isbn, title, author); err != nil {
			return err
		}

		now := s.now()
		created = Book{
			ISBN:      isbn,
			Title:     title,
			Author:    author,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.repo.Create(ctx, &created)
	})
	if err != nil {
		var conflict *ConflictingCatalogDataError
		if errors.As(err, &conflict) {
			s.logger.InfoContext(ctx, "book registration rejected", "isbn", isbn, "field", conflict.Field)
		} else {
			s.logger.ErrorContext(ctx, "book registration failed", "isbn", isbn, "error", err)
		}
		return Book{}, err
	}

	span.SetAttributes(attribute.Int64("book.id", created.ID))
	s.logger.InfoContext(ctx, "book registered", "book_id", created.ID, "isbn", isbn)
	return created, nil
}

func (s *Service) checkCatalogConsistency(ctx context.Context, isbn, title, author string) error {
	existing, err := s.repo.FindFirstByISBN(ctx, isbn)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if existing.Title != title {
		return &ConflictingCatalogDataError{ISBN: isbn, Field: "title", Existing: existing.Title}
	}
	if existing.Author != author {
		return &ConflictingCatalogDataError{ISBN: isbn, Field: "author", Existing: existing.Author}
	}
	return nil
}

// List returns every book in the catalog ordered by id.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// GetByID returns a book by id or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}
