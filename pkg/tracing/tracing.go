// Package tracing wires OpenTelemetry request tracing with an OTLP gRPC exporter
// and lifecycle-coordinated flush on shutdown.
package tracing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/JaimeStill/promptchan/pkg/lifecycle"
)

const flushTimeout = 5 * time.Second

// System manages the tracer provider and request instrumentation.
type System interface {
	// Middleware starts a server span for every request when tracing is enabled.
	Middleware(next http.Handler) http.Handler
	// Start registers the provider flush with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// Option customizes System construction.
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
}

// WithExporter replaces the OTLP exporter, for example with an in-memory exporter in tests.
func WithExporter(exporter sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = exporter
	}
}

type tracing struct {
	provider *sdktrace.TracerProvider
	logger   *slog.Logger
}

// New creates a tracing system. A disabled config yields a system whose
// middleware passes requests through untouched.
func New(cfg *Config, version string, logger *slog.Logger, opts ...Option) (System, error) {
	logger = logger.With("system", "tracing")

	if !cfg.Enabled {
		return &tracing{logger: logger}, nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.exporter == nil {
		clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
		}

		exporter, err := otlptracegrpc.New(context.Background(), clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		o.exporter = exporter
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(o.exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing enabled", "endpoint", cfg.Endpoint, "sample_ratio", cfg.SampleRatio)

	return &tracing{
		provider: provider,
		logger:   logger,
	}, nil
}

func (t *tracing) Middleware(next http.Handler) http.Handler {
	if t.provider == nil {
		return next
	}

	return otelhttp.NewHandler(
		next,
		"http.server",
		otelhttp.WithTracerProvider(t.provider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func (t *tracing) Start(lc *lifecycle.Coordinator) error {
	if t.provider == nil {
		return nil
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		t.logger.Info("flushing trace provider")

		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()

		if err := t.provider.Shutdown(ctx); err != nil {
			t.logger.Error("trace provider shutdown failed", "error", err)
			return
		}

		t.logger.Info("trace provider stopped")
	})

	return nil
}
