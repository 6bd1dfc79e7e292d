package attack

import (
	"context"
	"time"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
	"github.com/sara-star-quant/xorbreak/pkg/metrics"
)

// Breaker runs attacks with logging, tracing and metrics attached.
// It is safe for concurrent use if its Scorer is.
type Breaker struct {
	scorer    Scorer
	logger    *metrics.Logger
	tracer    metrics.Tracer
	collector *metrics.Collector
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *metrics.Logger) Option {
	return func(b *Breaker) { b.logger = l }
}

// WithTracer sets the tracer. The default is the global tracer.
func WithTracer(t metrics.Tracer) Option {
	return func(b *Breaker) { b.tracer = t }
}

// WithCollector sets the metrics collector. The default is metrics.Global().
func WithCollector(c *metrics.Collector) Option {
	return func(b *Breaker) { b.collector = c }
}

// NewBreaker creates a Breaker scoring candidates with s.
func NewBreaker(s Scorer, opts ...Option) *Breaker {
	b := &Breaker{
		scorer:    s,
		logger:    metrics.NullLogger(),
		tracer:    metrics.GetTracer(),
		collector: metrics.Global(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("attack")
	return b
}

// Collector returns the collector receiving this breaker's metrics.
func (b *Breaker) Collector() *metrics.Collector {
	return b.collector
}

func (b *Breaker) record(st searchStats, start time.Time) {
	b.collector.RecordKeysTried(st.tried)
	b.collector.RecordCandidates(st.accepted, st.rejected)
	b.collector.RecordAttackLatency(time.Since(start))
}

// ByScore runs BreakSingleByteByScore.
func (b *Breaker) ByScore(ctx context.Context, ct hex.Sequence) (c Candidate, found bool, err error) {
	attrs := metrics.AttackAttributes{
		Strategy:         constants.StrategyLetterScore.String(),
		CiphertextLength: ct.Len(),
	}
	_, span := b.tracer.StartSpan(ctx, metrics.SpanAttackScore, attrs.ToMap())
	defer func() { span.End(err) }()

	if err = ctx.Err(); err != nil {
		return Candidate{}, false, err
	}

	start := time.Now()
	c, found, st := scoreSearch(b.scorer, ct)
	attrs.Found, attrs.Candidates = found, int(st.accepted)
	span.SetAttributes(attrs.ToMap())
	b.collector.RecordScoreAttack()
	b.collector.RecordOutcome(found)
	b.record(st, start)

	if found {
		b.logger.Debug("single-byte key recovered", metrics.Fields{
			"key":   c.Key.String(),
			"score": c.Score,
		})
	} else {
		b.logger.Debug("no displayable candidate", metrics.Fields{"length": ct.Len()})
	}
	return c, found, nil
}

// ByWordHits runs BreakSingleByteByWordHits.
func (b *Breaker) ByWordHits(ctx context.Context, ct hex.Sequence) (out []Candidate, err error) {
	attrs := metrics.AttackAttributes{
		Strategy:         constants.StrategyWordHits.String(),
		CiphertextLength: ct.Len(),
	}
	_, span := b.tracer.StartSpan(ctx, metrics.SpanAttackWords, attrs.ToMap())
	defer func() { span.End(err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, st := wordSearch(b.scorer, ct)
	attrs.Found, attrs.Candidates = len(out) > 0, len(out)
	span.SetAttributes(attrs.ToMap())
	b.collector.RecordWordAttack()
	b.collector.RecordOutcome(len(out) > 0)
	b.record(st, start)

	b.logger.Debug("word-hit search done", metrics.Fields{"candidates": len(out)})
	return out, nil
}

// DetectLines runs DetectSingleByteXor.
func (b *Breaker) DetectLines(ctx context.Context, lines []hex.Sequence, workers int) (results []LineResult, err error) {
	attrs := metrics.AttackAttributes{
		Strategy: constants.StrategyLetterScore.String(),
		Lines:    len(lines),
	}
	ctx, span := b.tracer.StartSpan(ctx, metrics.SpanAttackDetect, attrs.ToMap())
	defer func() { span.End(err) }()

	start := time.Now()
	results, st, err := detect(ctx, b.scorer, lines, workers)
	b.record(st, start)
	if err != nil {
		b.logger.Warn("line scan aborted", metrics.Fields{"error": err.Error()})
		return nil, err
	}

	b.collector.RecordLinesScanned(uint64(len(lines)))
	best, found := BestLine(results)
	b.collector.RecordOutcome(found)
	attrs.Found, attrs.Candidates = found, countFound(results)
	span.SetAttributes(attrs.ToMap())
	if found {
		b.logger.Info("single-byte XOR line detected", metrics.Fields{
			"line":  best.Index,
			"key":   best.Candidate.Key.String(),
			"score": best.Candidate.Score,
		})
	}
	return results, nil
}

// RepeatingKey runs SolveRepeatingKey over key sizes [minSize, maxSize].
func (b *Breaker) RepeatingKey(ctx context.Context, ct hex.Sequence, minSize, maxSize int) (r RepeatingKeyResult, err error) {
	attrs := metrics.AttackAttributes{CiphertextLength: ct.Len()}
	ctx, span := b.tracer.StartSpan(ctx, metrics.SpanAttackRepeating, attrs.ToMap())
	defer func() { span.End(err) }()

	if err = ctx.Err(); err != nil {
		return RepeatingKeyResult{}, err
	}

	start := time.Now()
	b.collector.RecordRepeatingAttack()

	sizes := []int{minSize}
	if minSize != maxSize {
		sizes, err = b.guessSizes(ctx, ct, minSize, maxSize)
		if err != nil {
			b.collector.RecordOutcome(false)
			return RepeatingKeyResult{}, err
		}
	}
	attrs.Candidates = len(sizes)

	r, st, err := solveSizes(b.scorer, ct, sizes)
	b.record(st, start)
	b.collector.RecordOutcome(err == nil && !r.Incomplete)
	if err != nil {
		return RepeatingKeyResult{}, err
	}

	attrs.Found, attrs.KeySize = !r.Incomplete, r.KeySize
	span.SetAttributes(attrs.ToMap())

	fields := metrics.Fields{"key_size": r.KeySize, "hits": r.Hits}
	if r.Incomplete {
		b.logger.Warn("repeating key partially recovered", fields)
	} else {
		b.logger.Info("repeating key recovered", fields)
	}
	return r, nil
}

// guessSizes runs GuessKeySizes under a child span and expands the best
// guesses to candidate sizes.
func (b *Breaker) guessSizes(ctx context.Context, ct hex.Sequence, minSize, maxSize int) (sizes []int, err error) {
	_, span := b.tracer.StartSpan(ctx, metrics.SpanKeySizeGuess, map[string]any{
		"keysize.min": minSize,
		"keysize.max": maxSize,
	})
	defer func() { span.End(err) }()

	guesses, err := GuessKeySizes(ct, minSize, maxSize, constants.DefaultKeySizeCandidates)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(map[string]any{"keysize.best": guesses[0].Size})

	sizes = candidateSizes(guesses, minSize)
	b.logger.Debug("key size candidates", metrics.Fields{
		"best":  guesses[0].Size,
		"sizes": sizes,
	})
	return sizes, nil
}

func countFound(results []LineResult) int {
	n := 0
	for _, r := range results {
		if r.Found {
			n++
		}
	}
	return n
}
