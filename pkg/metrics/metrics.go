package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates metrics from attack runs. All methods are safe for
// concurrent use.
type Collector struct {
	// Attack runs by strategy
	scoreAttacks     atomic.Uint64
	wordAttacks      atomic.Uint64
	repeatingAttacks atomic.Uint64
	linesScanned     atomic.Uint64

	// Search space
	keysTried          atomic.Uint64
	candidatesRejected atomic.Uint64
	candidatesAccepted atomic.Uint64

	// Outcomes
	keysRecovered atomic.Uint64
	searchesEmpty atomic.Uint64
	codecErrors   atomic.Uint64

	attackLatency *Histogram

	createdAt time.Time
	labels    Labels
}

// Labels represents key-value pairs for metric labeling.
type Labels map[string]string

// LatencyBuckets for attack duration (microseconds).
var LatencyBuckets = []float64{10, 50, 100, 250, 500, 1000, 5000, 25000, 100000}

// NewCollector creates a new metrics collector.
func NewCollector(labels Labels) *Collector {
	if labels == nil {
		labels = make(Labels)
	}
	return &Collector{
		attackLatency: NewHistogram(LatencyBuckets),
		createdAt:     time.Now(),
		labels:        labels,
	}
}

// RecordScoreAttack counts one letter-score attack.
func (c *Collector) RecordScoreAttack() { c.scoreAttacks.Add(1) }

// RecordWordAttack counts one word-hit attack.
func (c *Collector) RecordWordAttack() { c.wordAttacks.Add(1) }

// RecordRepeatingAttack counts one repeating-key attack.
func (c *Collector) RecordRepeatingAttack() { c.repeatingAttacks.Add(1) }

// RecordLinesScanned adds to the scanned ciphertext line counter.
func (c *Collector) RecordLinesScanned(n uint64) { c.linesScanned.Add(n) }

// RecordKeysTried adds to the brute-forced key counter.
func (c *Collector) RecordKeysTried(n uint64) { c.keysTried.Add(n) }

// RecordCandidates records how many decodings passed and failed the
// printable filter.
func (c *Collector) RecordCandidates(accepted, rejected uint64) {
	c.candidatesAccepted.Add(accepted)
	c.candidatesRejected.Add(rejected)
}

// RecordOutcome counts a search that found a key or came up empty.
func (c *Collector) RecordOutcome(found bool) {
	if found {
		c.keysRecovered.Add(1)
	} else {
		c.searchesEmpty.Add(1)
	}
}

// RecordCodecError counts a rejected hex or base64 input.
func (c *Collector) RecordCodecError() { c.codecErrors.Add(1) }

// RecordAttackLatency records an attack duration.
func (c *Collector) RecordAttackLatency(d time.Duration) {
	c.attackLatency.Observe(float64(d.Microseconds()))
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Timestamp time.Time
	Uptime    time.Duration

	ScoreAttacks     uint64
	WordAttacks      uint64
	RepeatingAttacks uint64
	LinesScanned     uint64

	KeysTried          uint64
	CandidatesRejected uint64
	CandidatesAccepted uint64

	KeysRecovered uint64
	SearchesEmpty uint64
	CodecErrors   uint64

	AttackLatency HistogramSummary

	Labels Labels
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:          time.Now(),
		Uptime:             time.Since(c.createdAt),
		ScoreAttacks:       c.scoreAttacks.Load(),
		WordAttacks:        c.wordAttacks.Load(),
		RepeatingAttacks:   c.repeatingAttacks.Load(),
		LinesScanned:       c.linesScanned.Load(),
		KeysTried:          c.keysTried.Load(),
		CandidatesRejected: c.candidatesRejected.Load(),
		CandidatesAccepted: c.candidatesAccepted.Load(),
		KeysRecovered:      c.keysRecovered.Load(),
		SearchesEmpty:      c.searchesEmpty.Load(),
		CodecErrors:        c.codecErrors.Load(),
		AttackLatency:      c.attackLatency.Summary(),
		Labels:             c.labels,
	}
}

// Reset clears all metrics (useful for testing).
func (c *Collector) Reset() {
	for _, v := range []*atomic.Uint64{
		&c.scoreAttacks, &c.wordAttacks, &c.repeatingAttacks, &c.linesScanned,
		&c.keysTried, &c.candidatesRejected, &c.candidatesAccepted,
		&c.keysRecovered, &c.searchesEmpty, &c.codecErrors,
	} {
		v.Store(0)
	}
	c.attackLatency.Reset()
	c.createdAt = time.Now()
}

// --- Global Collector ---

var (
	globalCollector   *Collector
	globalCollectorMu sync.Mutex
)

// Global returns the process-wide collector, creating it on first use.
func Global() *Collector {
	globalCollectorMu.Lock()
	defer globalCollectorMu.Unlock()
	if globalCollector == nil {
		globalCollector = NewCollector(Labels{"instance": "default"})
	}
	return globalCollector
}

// SetGlobal replaces the process-wide collector. Call it during
// initialization, before attacks record anything.
func SetGlobal(c *Collector) {
	globalCollectorMu.Lock()
	defer globalCollectorMu.Unlock()
	globalCollector = c
}
