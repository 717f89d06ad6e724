package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lendingapi/internal/book"
	"lendingapi/internal/borrower"
	"lendingapi/internal/httpx"
	"lendingapi/internal/lending"
)

type routerDeps struct {
	books        *book.HTTPHandler
	borrowers    *borrower.HTTPHandler
	lending      *lending.HTTPHandler
	pinger       pinger
	logger       *slog.Logger
	rateLimiter  *httpx.RateLimitMiddleware
	corsOrigins  []string
	maxBodyBytes int64
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(d.logger))
	r.Use(httpx.RecoveryMiddleware(d.logger))
	r.Use(httpx.SecurityHeadersMiddleware(false))
	r.Use(httpx.CORSMiddleware(d.corsOrigins))
	r.Use(d.rateLimiter.Middleware)
	r.Use(httpx.RequestSizeLimitMiddleware(d.maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.pinger.Ping(ctx); err != nil {
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Store not ready")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/book/register", d.books.Register)
		r.Get("/book/getall", d.books.GetAll)
		r.Post("/book/borrow", d.lending.Borrow)
		r.Post("/book/{bookId}/return", d.lending.Return)
		r.Get("/book/{bookId}/history", d.lending.History)

		r.Post("/borrower/register", d.borrowers.Register)
		r.Get("/borrower/{borrowerId}", d.borrowers.Get)
	})

	return r
}
