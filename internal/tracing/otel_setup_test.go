package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestProviderCarriesServiceName(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()

	tp, err := newProvider(ctx, "todo-service", sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(ctx) }()

	_, span := tp.Tracer("test").Start(ctx, "GET /todos")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	var serviceName string
	for _, attr := range spans[0].Resource().Attributes() {
		if attr.Key == semconv.ServiceNameKey {
			serviceName = attr.Value.AsString()
		}
	}
	assert.Equal(t, "todo-service", serviceName)
}

func TestInitTracerProviderShutdown(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), "todo-service", "localhost:4317")
	require.NoError(t, err)

	// The batcher has nothing queued, so shutdown does not wait on the collector.
	assert.NoError(t, shutdown(context.Background()))
}
