package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// New returns a JSON logger writing to w at the given level
// ("debug", "info", "warn", "error"; unknown values mean info). Records that
// pass the level are also handed to every extra handler.
func New(w io.Writer, level string, extra ...slog.Handler) *slog.Logger {
	lvl := ParseLevel(level)
	var handler slog.Handler = NewTraceHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	if len(extra) > 0 {
		handler = &fanoutHandler{level: lvl, handlers: append([]slog.Handler{handler}, extra...)}
	}
	return slog.New(handler)
}

// OTelBridge returns a handler forwarding records to the OpenTelemetry logs
// pipeline of provider. The bridge reads the span from the record context,
// so exported logs carry the trace and span ids without TraceHandler.
func OTelBridge(name string, provider log.LoggerProvider) slog.Handler {
	return otelslog.NewHandler(name, otelslog.WithLoggerProvider(provider))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TraceHandler adds trace_id and span_id of the active span to every record
// written to the local JSON stream.
type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(next slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: next}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

// fanoutHandler sends each record at or above level to all handlers.
type fanoutHandler struct {
	level    slog.Leveler
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, l slog.Level) bool {
	if l < h.level.Level() {
		return false
	}
	for _, next := range h.handlers {
		if next.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, next := range h.handlers {
		if next.Enabled(ctx, r.Level) {
			errs = append(errs, next.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &fanoutHandler{level: h.level, handlers: make([]slog.Handler, len(h.handlers))}
	for i, next := range h.handlers {
		out.handlers[i] = next.WithAttrs(attrs)
	}
	return out
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	out := &fanoutHandler{level: h.level, handlers: make([]slog.Handler, len(h.handlers))}
	for i, next := range h.handlers {
		out.handlers[i] = next.WithGroup(name)
	}
	return out
}

// Discard returns a logger that drops everything. Used as the default for
// services constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
