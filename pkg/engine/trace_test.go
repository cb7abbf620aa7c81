package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestSubmit_Traced(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	e, _, store := setup(t, WithTracerProvider(tp))
	ctx := context.Background()

	_, err := e.Submit(ctx, "alice", "c1", "email @")
	require.NoError(t, err)

	store.failPut.Store(true)
	_, err = e.Submit(ctx, "alice", "c2", "labels")
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "engine.Submit", ok.Name())
	attrs := spanAttrs(ok)
	assert.Equal(t, "alice", attrs["learner.id"].AsString())
	assert.Equal(t, "c1", attrs["challenge.id"].AsString())
	assert.True(t, attrs["attempt.newly_completed"].AsBool())
	assert.Equal(t, codes.Unset, ok.Status().Code)

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.NotEmpty(t, failed.Events(), "error must be recorded on the span")
}

func TestReevaluate_Traced(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	e, _, _ := setup(t, WithTracerProvider(tp))
	_, err := e.Reevaluate(context.Background(), "alice")
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "engine.Reevaluate", spans[0].Name())
}
