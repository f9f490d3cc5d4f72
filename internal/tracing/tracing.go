// Package tracing sets up OpenTelemetry tracing for the non-real-time side
// of the engine: graph rebuilds and latency recalculations.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/vk/dawgraph/internal/ctxlog"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Config holds configuration for tracing setup.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint is host:port of an OTLP/HTTP collector. Empty disables
	// tracing.
	OTLPEndpoint string
	SampleRatio  float64
	Insecure     bool
}

// DefaultConfig returns a configuration that samples every trace and sends
// it to endpoint over plain HTTP.
func DefaultConfig(serviceName, endpoint string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		OTLPEndpoint:   endpoint,
		SampleRatio:    1.0,
		Insecure:       true,
	}
}

// Setup installs a global tracer provider exporting over OTLP/HTTP and
// returns its shutdown function. With no endpoint configured it installs
// nothing and returns a no-op.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	logger := ctxlog.FromContext(ctx)
	if cfg.OTLPEndpoint == "" {
		logger.Debug("Tracing disabled, no OTLP endpoint configured.")
		return func(context.Context) error { return nil }, nil
	}

	logger.Info("Setting up tracing.", "service_name", cfg.ServiceName, "otlp_endpoint", cfg.OTLPEndpoint, "environment", cfg.Environment)

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Debug("Tracing setup completed.")
	return tp.Shutdown, nil
}

// Shutdown calls shutdown with a bounded timeout and logs the outcome.
func Shutdown(ctx context.Context, shutdown ShutdownFunc, timeout time.Duration) error {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		logger.Error("Failed to shut down tracing.", "error", err)
		return err
	}
	logger.Debug("Tracing shut down.")
	return nil
}
