package tracing_test

import (
	"context"
	"testing"

	"userdir/pkg/tracing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_WithoutEndpoint(t *testing.T) {
	ctx := context.Background()

	tp, err := tracing.NewProvider(ctx, tracing.Options{ServiceName: "userdir"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	sr := tracetest.NewSpanRecorder()
	tp.RegisterSpanProcessor(sr)

	_, span := tp.Tracer("test").Start(ctx, "GetUser")
	require.True(t, span.SpanContext().IsSampled())
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "GetUser", ended[0].Name())

	var service string
	for _, attr := range ended[0].Resource().Attributes() {
		if attr.Key == "service.name" {
			service = attr.Value.AsString()
		}
	}
	require.Equal(t, "userdir", service)
}

func TestNewProvider_WithEndpoint(t *testing.T) {
	ctx := context.Background()

	// the exporter connects lazily, so construction succeeds without a collector
	tp, err := tracing.NewProvider(ctx, tracing.Options{
		ServiceName: "userdir",
		Endpoint:    "http://127.0.0.1:4318",
		SampleRatio: 0.5,
	})
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(ctx))
}
