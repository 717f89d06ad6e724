package lending

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"lendingapi/internal/apperr"
	"lendingapi/internal/platform/logging"
	"lendingapi/internal/platform/telemetry"
)

const instrumentationName = "lendingapi/internal/lending"

// Service runs the borrow and return workflow. Every call executes in a
// single transaction and leaves storage untouched when it fails.
type Service struct {
	records   Repository
	books     BookFinder
	borrowers BorrowerFinder
	tx        Transactor
	now       func() time.Time
	logger    *slog.Logger
	tracer    trace.Tracer
	requests  metric.Int64Counter
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

// WithMeter sets the meter the request counter is created from.
func WithMeter(meter metric.Meter) Option {
	return func(s *Service) { s.requests = newRequestCounter(meter) }
}

func NewService(records Repository, books BookFinder, borrowers BorrowerFinder, tx Transactor, opts ...Option) *Service {
	s := &Service{
		records:   records,
		books:     books,
		borrowers: borrowers,
		tx:        tx,
		now:       time.Now,
		logger:    logging.Discard(),
		tracer:    otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.requests == nil {
		s.requests = newRequestCounter(otel.Meter(instrumentationName))
	}
	return s
}

func newRequestCounter(meter metric.Meter) metric.Int64Counter {
	counter, err := meter.Int64Counter("lending.requests",
		metric.WithDescription("Borrow and return requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
}

// Borrow opens a lending record for the pair. The book is resolved before
// the borrower, then the pair and the book are checked for open records.
func (s *Service) Borrow(ctx context.Context, bookID, borrowerID int64) (rec Record, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.Borrow", trace.WithAttributes(
		attribute.Int64("book.id", bookID),
		attribute.Int64("borrower.id", borrowerID),
	))
	defer func() {
		telemetry.EndSpan(span, err)
		s.record(ctx, "borrow", err)
	}()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}
		br, err := s.borrowers.GetByID(ctx, borrowerID)
		if err != nil {
			return err
		}

		switch _, err := s.records.FindOpenByBookAndBorrower(ctx, bookID, borrowerID); {
		case err == nil:
			return ErrAlreadyBorrowedBySameParty
		case !errors.Is(err, ErrNoOpenRecord):
			return err
		}

		switch _, err := s.records.FindOpenByBook(ctx, bookID); {
		case err == nil:
			return ErrAlreadyBorrowedByOther
		case !errors.Is(err, ErrNoOpenRecord):
			return err
		}

		now := s.now()
		rec = Record{
			Book:       b,
			Borrower:   br,
			Status:     StatusOpen,
			BorrowedAt: now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.records.Create(ctx, &rec); err != nil {
			if errors.Is(err, ErrOpenRecordConflict) {
				return s.conflictHolder(ctx, bookID, borrowerID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "borrow", bookID, borrowerID, err)
		return Record{}, err
	}

	span.SetAttributes(attribute.Int64("lending.record_id", rec.ID))
	s.logger.InfoContext(ctx, "book borrowed", "record_id", rec.ID, "book_id", bookID, "borrower_id", borrowerID)
	return rec, nil
}

// conflictHolder tells which rejection applies after a concurrent borrow
// committed the open record first.
func (s *Service) conflictHolder(ctx context.Context, bookID, borrowerID int64) error {
	_, err := s.records.FindOpenByBookAndBorrower(ctx, bookID, borrowerID)
	switch {
	case err == nil:
		return ErrAlreadyBorrowedBySameParty
	case errors.Is(err, ErrNoOpenRecord):
		return ErrAlreadyBorrowedByOther
	default:
		return err
	}
}

// Return closes the open record of exactly the pair.
func (s *Service) Return(ctx context.Context, bookID, borrowerID int64) (rec Record, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.Return", trace.WithAttributes(
		attribute.Int64("book.id", bookID),
		attribute.Int64("borrower.id", borrowerID),
	))
	defer func() {
		telemetry.EndSpan(span, err)
		s.record(ctx, "return", err)
	}()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		open, err := s.records.FindOpenByBookAndBorrower(ctx, bookID, borrowerID)
		if errors.Is(err, ErrNoOpenRecord) {
			return &NoOpenBorrowError{BookID: bookID, BorrowerID: borrowerID}
		}
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.records.MarkReturned(ctx, open.ID, now); err != nil {
			if errors.Is(err, ErrNoOpenRecord) {
				return &NoOpenBorrowError{BookID: bookID, BorrowerID: borrowerID}
			}
			return err
		}

		rec = open
		rec.Status = StatusReturned
		rec.ReturnedAt = &now
		rec.UpdatedAt = now
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "return", bookID, borrowerID, err)
		return Record{}, err
	}

	s.logger.InfoContext(ctx, "book returned", "record_id", rec.ID, "book_id", bookID, "borrower_id", borrowerID)
	return rec, nil
}

// History lists every lending record of a book, newest first.
func (s *Service) History(ctx context.Context, bookID int64) (records []Record, err error) {
	ctx, span := s.tracer.Start(ctx, "lending.History", trace.WithAttributes(attribute.Int64("book.id", bookID)))
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	return s.records.ListByBook(ctx, bookID)
}

func (s *Service) logFailure(ctx context.Context, op string, bookID, borrowerID int64, err error) {
	if apperr.KindOf(err) != nil {
		s.logger.InfoContext(ctx, op+" rejected",
			"book_id", bookID,
			"borrower_id", borrowerID,
			"code", apperr.CodeOf(err, ""),
		)
		return
	}
	s.logger.ErrorContext(ctx, op+" failed", "book_id", bookID, "borrower_id", borrowerID, "error", err)
}

func (s *Service) record(ctx context.Context, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.CodeOf(err, "INTERNAL_ERROR")
	}
	s.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}
