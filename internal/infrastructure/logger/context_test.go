package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldMap(entry observer.LoggedEntry) map[string]string {
	out := map[string]string{}
	for _, f := range entry.Context {
		out[f.Key] = f.String
	}
	return out
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	log := zap.NewExample()
	assert.Same(t, log, FromContext(WithContext(context.Background(), log)))
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetActor(ctx))
	assert.Empty(t, GetApplicationID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActor(ctx, "officer-7")
	ctx = WithApplicationID(ctx, "app-42")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "officer-7", GetActor(ctx))
	assert.Equal(t, "app-42", GetApplicationID(ctx))
}

func TestContextLogger_InjectsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActor(ctx, "officer-7")
	ctx = WithApplicationID(ctx, "app-42")

	L(ctx).Info("transition applied", zap.String("to_status", "PENDING_DOCS"))

	require.Equal(t, 1, logs.Len())
	fields := fieldMap(logs.All()[0])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "officer-7", fields["actor"])
	assert.Equal(t, "app-42", fields["application_id"])
	assert.Equal(t, "PENDING_DOCS", fields["to_status"])
	assert.NotContains(t, fields, "trace_id")
}

func TestContextLogger_TraceCorrelation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	WithLogger(ctx, zap.New(core)).Warn("publish failed")

	require.Equal(t, 1, logs.Len())
	fields := fieldMap(logs.All()[0])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestContextLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithActor(context.Background(), "officer-7")

	WithLogger(ctx, zap.New(core)).With(zap.String("component", "capacity")).Error("boom")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	fields := fieldMap(entry)
	assert.Equal(t, "capacity", fields["component"])
	assert.Equal(t, "officer-7", fields["actor"])
	// actor must appear exactly once
	count := 0
	for _, f := range entry.Context {
		if f.Key == "actor" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestContextLogger_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		WithLogger(context.Background(), nil).Info("dropped")
	})
}
