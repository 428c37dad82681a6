package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts every floorview span. InitTracing replaces it.
var Tracer trace.Tracer = otel.Tracer("floorview")

// Span attributes recorded on floor API calls.
const (
	AttrOperation  = attribute.Key("upstream.operation")
	AttrTarget     = attribute.Key("http.target")
	AttrStatusCode = attribute.Key("http.status_code")
	AttrPostID     = attribute.Key("floor.post_id")
	AttrCategoryID = attribute.Key("floor.category_id")
	AttrTagID      = attribute.Key("floor.tag_id")
)

// TracingConfig holds configuration for initializing the tracer.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "stdout" or "otlp"
	OTLPEndpoint   string
	SamplerRatio   float64
}

// InitTracing installs a tracer provider and the W3C propagators.
// When tracing is disabled the returned shutdown is a no-op.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	ctx := context.Background()
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter %q: %w", cfg.Exporter, err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	Tracer = tp.Tracer(cfg.ServiceName)

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == "otlp" {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func newSampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// UpstreamCall names one floor API request. Zero ids are left off the span.
type UpstreamCall struct {
	Operation  string
	Target     string
	PostID     int64
	CategoryID int64
	TagID      int64
}

func (c UpstreamCall) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{AttrOperation.String(c.Operation), AttrTarget.String(c.Target)}
	if c.PostID != 0 {
		attrs = append(attrs, AttrPostID.Int64(c.PostID))
	}
	if c.CategoryID != 0 {
		attrs = append(attrs, AttrCategoryID.Int64(c.CategoryID))
	}
	if c.TagID != 0 {
		attrs = append(attrs, AttrTagID.Int64(c.TagID))
	}
	return attrs
}

// UpstreamSpan is the client span around a floor API request.
type UpstreamSpan struct {
	span trace.Span
}

// StartUpstreamSpan starts the client span "upstream.<operation>" for call.
func StartUpstreamSpan(ctx context.Context, call UpstreamCall) (context.Context, *UpstreamSpan) {
	ctx, span := Tracer.Start(ctx, "upstream."+call.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(call.attributes()...),
	)
	return ctx, &UpstreamSpan{span: span}
}

// StatusCode records the HTTP status the floor API answered with.
func (s *UpstreamSpan) StatusCode(code int) {
	s.span.SetAttributes(AttrStatusCode.Int(code))
}

// End records err, if any, as the span's failure and ends the span.
func (s *UpstreamSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}
