package metrics

import (
	"context"
	"maps"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Tracer starts spans around attack operations. Backends include the
// in-memory SimpleTracer and, with the otel build tag, OpenTelemetry.
type Tracer interface {
	// StartSpan starts a span carrying the given attributes, parented to
	// any span already in ctx. attrs may be nil.
	StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, Span)
}

// Span is an in-flight traced operation.
type Span interface {
	// SetAttributes merges attrs into the span, overwriting existing keys.
	// Attack outcomes are only known once the search finishes.
	SetAttributes(attrs map[string]any)

	// End finishes the span. Pass nil on success or the error that failed it.
	End(err error)
}

type noopSpan struct{}

func (noopSpan) SetAttributes(map[string]any) {}
func (noopSpan) End(error)                    {}

// NoOpTracer is a tracer that does nothing.
type NoOpTracer struct{}

// StartSpan returns the context unchanged and a span that discards everything.
func (NoOpTracer) StartSpan(ctx context.Context, _ string, _ map[string]any) (context.Context, Span) {
	return ctx, noopSpan{}
}

// SimpleTracer records finished spans in memory. Useful for tests and the
// CLI's -tracing simple mode.
type SimpleTracer struct {
	mu     sync.Mutex
	spans  []RecordedSpan
	nextID atomic.Uint64
}

// RecordedSpan represents a completed span.
type RecordedSpan struct {
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Attributes map[string]any
	Error      error
	TraceID    string
	SpanID     string
	ParentID   string
}

// NewSimpleTracer creates a new SimpleTracer.
func NewSimpleTracer() *SimpleTracer {
	return &SimpleTracer{}
}

type simpleSpan struct {
	tracer *SimpleTracer
	mu     sync.Mutex
	rec    RecordedSpan
	ended  bool
}

// StartSpan starts a new span, parented to any span already in ctx.
func (t *SimpleTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, Span) {
	span := &simpleSpan{
		tracer: t,
		rec: RecordedSpan{
			Name:       name,
			StartTime:  time.Now(),
			Attributes: make(map[string]any, len(attrs)),
			SpanID:     t.newID(),
		},
	}
	maps.Copy(span.rec.Attributes, attrs)

	if parent := spanFromContext(ctx); parent != nil {
		span.rec.ParentID = parent.rec.SpanID
		span.rec.TraceID = parent.rec.TraceID
	} else {
		span.rec.TraceID = t.newID()
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

func (s *simpleSpan) SetAttributes(attrs map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		maps.Copy(s.rec.Attributes, attrs)
	}
}

// End records the span once; later calls are ignored.
func (s *simpleSpan) End(err error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.rec.EndTime = time.Now()
	s.rec.Duration = s.rec.EndTime.Sub(s.rec.StartTime)
	s.rec.Error = err
	rec := s.rec
	s.mu.Unlock()

	s.tracer.mu.Lock()
	s.tracer.spans = append(s.tracer.spans, rec)
	s.tracer.mu.Unlock()
}

func (t *SimpleTracer) newID() string {
	return strconv.FormatUint(t.nextID.Add(1), 16)
}

// Spans returns all recorded spans in completion order.
func (t *SimpleTracer) Spans() []RecordedSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]RecordedSpan, len(t.spans))
	copy(result, t.spans)
	return result
}

// Reset clears all recorded spans.
func (t *SimpleTracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = t.spans[:0]
}

type spanContextKey struct{}

func spanFromContext(ctx context.Context) *simpleSpan {
	if span, ok := ctx.Value(spanContextKey{}).(*simpleSpan); ok {
		return span
	}
	return nil
}

// --- Global Tracer ---

var (
	globalTracer   Tracer = NoOpTracer{}
	globalTracerMu sync.RWMutex
)

// SetTracer sets the global tracer.
func SetTracer(t Tracer) {
	globalTracerMu.Lock()
	defer globalTracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the global tracer.
func GetTracer() Tracer {
	globalTracerMu.RLock()
	defer globalTracerMu.RUnlock()
	return globalTracer
}

// StartSpan starts a span using the global tracer.
func StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, Span) {
	return GetTracer().StartSpan(ctx, name, attrs)
}

// Standard span names for xorbreak operations.
const (
	SpanAttackScore     = "xorbreak.attack.score"
	SpanAttackWords     = "xorbreak.attack.words"
	SpanAttackDetect    = "xorbreak.attack.detect"
	SpanAttackRepeating = "xorbreak.attack.repeating"
	SpanKeySizeGuess    = "xorbreak.attack.keysize"
)

// AttackAttributes describes one attack invocation.
type AttackAttributes struct {
	Strategy         string
	CiphertextLength int
	Lines            int
	KeySize          int
	Candidates       int
	Found            bool
}

// ToMap converts AttackAttributes to a generic map for use with tracers.
// Zero-valued counts are omitted.
func (a AttackAttributes) ToMap() map[string]any {
	m := map[string]any{"attack.found": a.Found}
	if a.Strategy != "" {
		m["attack.strategy"] = a.Strategy
	}
	if a.CiphertextLength > 0 {
		m["attack.ciphertext_length"] = a.CiphertextLength
	}
	if a.Lines > 0 {
		m["attack.lines"] = a.Lines
	}
	if a.KeySize > 0 {
		m["attack.key_size"] = a.KeySize
	}
	if a.Candidates > 0 {
		m["attack.candidates"] = a.Candidates
	}
	return m
}

