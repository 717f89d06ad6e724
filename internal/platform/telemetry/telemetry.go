// Package telemetry wires the OpenTelemetry SDK for the API process.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers holds what Setup installed.
type Providers struct {
	// Logs exports log records over OTLP. Nil when export is disabled.
	Logs *sdklog.LoggerProvider

	shutdown []func(context.Context) error
}

// Shutdown flushes and stops the installed providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

// Setup installs global tracer and logger providers exporting over OTLP/HTTP
// to endpoint. With an empty endpoint nothing is installed and the global
// no-op providers stay in place.
func Setup(ctx context.Context, serviceName, endpoint string) (*Providers, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p := &Providers{}
	if endpoint == "" {
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx, traceExporterOptions(endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	p.shutdown = append(p.shutdown, tp.Shutdown)

	logExporter, err := otlploghttp.New(ctx, logExporterOptions(endpoint)...)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("create otlp log exporter: %w", err)
	}
	p.Logs = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(p.Logs)
	p.shutdown = append(p.shutdown, p.Logs.Shutdown)

	return p, nil
}

// splitEndpoint returns the host:port part of endpoint and whether the
// collector speaks plain HTTP.
func splitEndpoint(endpoint string) (hostPort string, insecure bool) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), true
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), false
	default:
		return endpoint, false
	}
}

func traceExporterOptions(endpoint string) []otlptracehttp.Option {
	hostPort, insecure := splitEndpoint(endpoint)
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(hostPort)}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

func logExporterOptions(endpoint string) []otlploghttp.Option {
	hostPort, insecure := splitEndpoint(endpoint)
	opts := []otlploghttp.Option{otlploghttp.WithEndpoint(hostPort)}
	if insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}
	return opts
}
