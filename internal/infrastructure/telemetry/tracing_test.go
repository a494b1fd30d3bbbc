package telemetry

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "txview-test", "dev", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestExtractHTTPHeaders(t *testing.T) {
	_, err := InitTracer(context.Background(), "txview-test", "dev", "")
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	ctx := ExtractHTTPHeaders(context.Background(), headers)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", TraceIDFromContext(ctx))

	assert.Empty(t, TraceIDFromContext(ExtractHTTPHeaders(context.Background(), http.Header{})))
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions("https://otel.example:4318/v1/traces"), 2)
	assert.Len(t, exporterOptions("localhost:4318"), 3)
}
