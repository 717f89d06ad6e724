package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lendingapi/internal/book"
	"lendingapi/internal/borrower"
	"lendingapi/internal/config"
	"lendingapi/internal/httpx"
	"lendingapi/internal/lending"
	"lendingapi/internal/platform/logging"
	"lendingapi/internal/platform/postgres"
	"lendingapi/internal/platform/telemetry"
	"lendingapi/internal/store/memory"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}

	var exported []slog.Handler
	if providers.Logs != nil {
		exported = append(exported, logging.OTelBridge(cfg.ServiceName, providers.Logs))
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, exported...)
	slog.SetDefault(logger)

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(flushCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	handler := newRouter(routerDeps{
		books:        book.NewHTTPHandler(book.NewService(be.books, be.tx, book.WithLogger(logger))),
		borrowers:    borrower.NewHTTPHandler(borrower.NewService(be.borrowers, borrower.WithLogger(logger))),
		lending:      lending.NewHTTPHandler(lending.NewService(be.records, be.books, be.borrowers, be.tx, lending.WithLogger(logger))),
		pinger:       be.pinger,
		logger:       logger,
		rateLimiter:  httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateBurst, httpx.WithTrustedProxies(cfg.TrustedProxies)),
		corsOrigins:  cfg.CORSOrigins,
		maxBodyBytes: cfg.MaxBodyBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "store", cfg.StoreDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// backend bundles the repositories of one storage driver.
type backend struct {
	books     book.Repository
	borrowers borrower.Repository
	records   lending.Repository
	tx        lending.Transactor
	pinger    pinger
	close     func()
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		s := memory.New()
		return backend{
			books:     s.Books(),
			borrowers: s.Borrowers(),
			records:   s.Lending(),
			tx:        s,
			pinger:    s,
			close:     func() {},
		}, nil
	}

	pool, err := postgres.Open(ctx, cfg.DatabaseDSN, 2*time.Second)
	if err != nil {
		return backend{}, fmt.Errorf("open database %s: %w", config.RedactDSN(cfg.DatabaseDSN), err)
	}
	logger.Info("database connection OK", "dsn", config.RedactDSN(cfg.DatabaseDSN))

	return backend{
		books:     book.NewPostgresRepo(pool, cfg.DBTimeout),
		borrowers: borrower.NewPostgresRepo(pool, cfg.DBTimeout),
		records:   lending.NewPostgresRepo(pool, cfg.DBTimeout),
		tx:        postgres.NewTxManager(pool),
		pinger:    pool,
		close:     pool.Close,
	}, nil
}
