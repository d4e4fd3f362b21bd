package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupStdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), true, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("poliwatch/test").Start(context.Background(), "ingest.member")
	span.End()

	// shutdown flushes the batcher
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"ingest.member"`)
	assert.Contains(t, buf.String(), serviceName)
}
