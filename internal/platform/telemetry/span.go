package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lendingapi/internal/apperr"
)

// EndSpan annotates span with the outcome of an operation. Domain
// rejections only carry their code; anything else marks the span failed.
func EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	if apperr.KindOf(err) != nil {
		span.SetAttributes(attribute.String("app.error_code", apperr.CodeOf(err, "")))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
