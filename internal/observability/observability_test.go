package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_ProductionWritesJSONWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Env: "production", Level: "info", Writer: &buf})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithTraceID(ctx, "trace-1")
	logger.With(slog.String("component", "test")).InfoContext(ctx, "hello", slog.Int("n", 1))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "trace-1", record["trace_id"])
	assert.Equal(t, "test", record["component"])
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Env: "development", Level: "error", Writer: &buf})

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestExtractRequestID(t *testing.T) {
	assert.Equal(t, "", ExtractRequestID(context.Background()))
	assert.Equal(t, "abc", ExtractRequestID(WithRequestID(context.Background(), "abc")))
}

func TestUpstreamMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUpstreamMetrics(reg)

	m.Observe("categories", "ok", time.Now())
	m.Track("categories")("ok")
	m.Track("post_detail")("status")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("categories", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("post_detail", "status")))
}

func TestUpstreamMetrics_NilIsNoop(t *testing.T) {
	var m *UpstreamMetrics
	assert.NotPanics(t, func() {
		m.Observe("categories", "ok", time.Now())
		m.Track("categories")("ok")
	})
}

func TestInitTracing_Disabled(t *testing.T) {
	prev := Tracer
	t.Cleanup(func() { Tracer = prev })

	shutdown, err := InitTracing(TracingConfig{ServiceName: "floorview-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := StartUpstreamSpan(context.Background(), UpstreamCall{Operation: "categories"})
	span.End(nil)
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	prev := Tracer
	Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)).Tracer("test")
	t.Cleanup(func() { Tracer = prev })
	return sr
}

func TestStartUpstreamSpan_RecordsFloorIDs(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartUpstreamSpan(context.Background(), UpstreamCall{
		Operation:  "post_list",
		Target:     "/post/list/ANDROID/4.1.8",
		CategoryID: 5,
		TagID:      11,
	})
	span.StatusCode(200)
	span.End(nil)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "upstream.post_list", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	assert.Equal(t, codes.Unset, got.Status().Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "post_list", attrs[AttrOperation].AsString())
	assert.Equal(t, int64(5), attrs[AttrCategoryID].AsInt64())
	assert.Equal(t, int64(11), attrs[AttrTagID].AsInt64())
	assert.Equal(t, int64(200), attrs[AttrStatusCode].AsInt64())
	_, hasPost := attrs[AttrPostID]
	assert.False(t, hasPost)
}

func TestUpstreamSpan_EndWithError(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartUpstreamSpan(context.Background(), UpstreamCall{Operation: "post_detail", PostID: 42})
	span.End(errors.New("request timed out"))

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "request timed out", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}
