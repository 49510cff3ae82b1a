// Package tracing builds the OpenTelemetry tracer provider used by the HTTP
// layer. Spans are exported over OTLP/HTTP when an endpoint is configured and
// are otherwise only kept in process.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Options configures the tracer provider.
type Options struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string
	// Endpoint is the OTLP/HTTP collector URL, e.g. "http://localhost:4318".
	// Empty disables exporting.
	Endpoint string
	// SampleRatio is the fraction of root spans sampled, 0 < ratio <= 1.
	// Zero samples everything.
	SampleRatio float64
}

// NewProvider creates a tracer provider for opts. The caller owns it and must
// call Shutdown to flush pending spans.
func NewProvider(ctx context.Context, opts Options) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create otel resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if opts.SampleRatio > 0 && opts.SampleRatio < 1 {
		sampler = sdktrace.TraceIDRatioBased(opts.SampleRatio)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	}
	if opts.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("could not create otlp trace exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	return sdktrace.NewTracerProvider(providerOpts...), nil
}
