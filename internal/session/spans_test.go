package session

import (
	"bytes"
	"context"
	"testing"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestLive_PhaseSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	p := newPhaseRecorder(t, map[string]int{"replay": 7})
	live := newLive(t, p, &bytes.Buffer{})
	live.Tracer = tp.Tracer("test")
	live.Attributes = []attribute.KeyValue{attribute.String("deploy.env", "staging")}

	opts := config.NewOptions()
	opts.Exename = "./a.out"
	status, err := live.Run(context.Background(), nil, opts)
	require.NoError(t, err)
	require.Equal(t, 7, status)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range spans {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "live")
	require.Contains(t, byName, "live.record")
	require.Contains(t, byName, "live.replay")

	root := byName["live"]
	assert.Contains(t, root.Attributes(), attribute.String("deploy.env", "staging"))
	assert.Contains(t, root.Attributes(), attribute.Int("livetrace.exit_status", 7))
	assert.Equal(t, root.SpanContext().SpanID(), byName["live.record"].Parent().SpanID())

	assert.Equal(t, codes.Unset, byName["live.record"].Status().Code)
	assert.Equal(t, codes.Error, byName["live.replay"].Status().Code)
}
