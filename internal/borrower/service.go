package borrower

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

type Service struct {
	repo   Repository
	now    func() time.Time
	logger *slog.Logger
	tracer trace.Tracer
}

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

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		logger: logging.Discard(),
		tracer: otel.Tracer("lendingapi/internal/borrower"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a borrower unless the email is already taken.
func (s *Service) Register(ctx context.Context, name, email string) (created Borrower, err error) {
	ctx, span := s.tracer.Start(ctx, "borrower.Register")
	defer func() { telemetry.EndSpan(span, err) }()

	_, err = s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "borrower registration rejected", "reason", "duplicate email")
		return Borrower{}, ErrAlreadyExists.Withf("Borrower with email %s already exists", email)
	case !errors.Is(err, ErrNotFound):
		s.logger.ErrorContext(ctx, "borrower lookup failed", "error", err)
		return Borrower{}, err
	}

	now := s.now()
	created = Borrower{
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = s.repo.Create(ctx, &created); err != nil {
		// A concurrent registration won the race past the lookup.
		if errors.Is(err, ErrAlreadyExists) {
			s.logger.InfoContext(ctx, "borrower registration rejected", "reason", "duplicate email")
			return Borrower{}, ErrAlreadyExists.Withf("Borrower with email %s already exists", email)
		}
		s.logger.ErrorContext(ctx, "borrower registration failed", "error", err)
		return Borrower{}, err
	}

	span.SetAttributes(attribute.Int64("borrower.id", created.ID))
	s.logger.InfoContext(ctx, "borrower registered", "borrower_id", created.ID)
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Borrower, error) {
	return s.repo.GetByID(ctx, id)
}
