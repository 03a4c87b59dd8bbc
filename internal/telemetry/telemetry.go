package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/plant-dashboard/internal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider exporting over OTLP/gRPC. When
// tracing is disabled it returns a no-op shutdown.
func Setup(ctx context.Context, cfg internal.TracingConfig, lg *slog.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noop, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		lg.Warn("otel resource detection failed", "error", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplingRate))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	lg.Info("tracing enabled", "endpoint", cfg.Endpoint, "service", cfg.ServiceName, "sampling_rate", cfg.SamplingRate)
	return provider.Shutdown, nil
}

// WrapHandler instruments h with a server span per request.
func WrapHandler(h http.Handler, operation string) http.Handler {
	return otelhttp.NewHandler(h, operation)
}
