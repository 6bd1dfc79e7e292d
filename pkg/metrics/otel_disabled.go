//go:build !otel

package metrics

import "context"

// OTelTracer stands in for the OpenTelemetry tracer in builds without the
// otel tag. Spans are discarded.
type OTelTracer struct{}

// NewOTelTracer returns a tracer that discards spans. Rebuild with
// -tags otel for OpenTelemetry export.
func NewOTelTracer(string) *OTelTracer {
	return &OTelTracer{}
}

// StartSpan returns ctx and a discarding span.
func (*OTelTracer) StartSpan(ctx context.Context, _ string, _ map[string]any) (context.Context, Span) {
	return ctx, noopSpan{}
}

// OTelEnabled reports whether OpenTelemetry support is built in.
func OTelEnabled() bool {
	return false
}
