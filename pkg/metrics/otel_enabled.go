//go:build otel

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies xorbreak spans to the OpenTelemetry provider.
const InstrumentationName = "github.com/sara-star-quant/xorbreak"

// OTelTracer exports attack spans through the global OpenTelemetry provider.
type OTelTracer struct {
	tracer  trace.Tracer
	service string
}

// NewOTelTracer creates a tracer tagging each span with service.
func NewOTelTracer(service string) *OTelTracer {
	if service == "" {
		service = "xorbreak"
	}
	return &OTelTracer{
		tracer:  otel.Tracer(InstrumentationName),
		service: service,
	}
}

// StartSpan starts an internal OpenTelemetry span.
func (t *OTelTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, Span) {
	kvs := append(otelAttributes(attrs), attribute.String("service.name", t.service))
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(kvs...),
	)
	return ctx, otelSpan{span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttributes(attrs map[string]any) {
	s.span.SetAttributes(otelAttributes(attrs)...)
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// OTelEnabled reports whether OpenTelemetry support is built in.
func OTelEnabled() bool {
	return true
}

func otelAttributes(attrs map[string]any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs)+1)
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			out = append(out, attribute.String(k, val))
		case bool:
			out = append(out, attribute.Bool(k, val))
		case int:
			out = append(out, attribute.Int(k, val))
		case []int:
			out = append(out, attribute.IntSlice(k, val))
		case uint64:
			out = append(out, attribute.Int64(k, int64(val)))
		default:
			out = append(out, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return out
}
