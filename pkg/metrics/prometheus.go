package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strings"
)

// PrometheusExporter exports metrics in Prometheus text format.
type PrometheusExporter struct {
	collector *Collector
	namespace string
}

// NewPrometheusExporter creates a new Prometheus exporter for the given collector.
// The namespace is prepended to all metric names (e.g., "xorbreak").
func NewPrometheusExporter(c *Collector, namespace string) *PrometheusExporter {
	return &PrometheusExporter{
		collector: c,
		namespace: namespace,
	}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (e *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		e.WriteMetrics(w)
	})
}

type promCounter struct {
	name  string
	help  string
	typ   string
	value float64
}

// WriteMetrics writes all metrics in Prometheus text format to the writer.
func (e *PrometheusExporter) WriteMetrics(w io.Writer) {
	snap := e.collector.Snapshot()
	labels := e.formatLabels(snap.Labels)

	series := []promCounter{
		{"attacks_total", "Total attacks run", "counter", 0},
		{"lines_scanned_total", "Total ciphertext lines scanned for single-byte XOR", "counter", float64(snap.LinesScanned)},
		{"keys_tried_total", "Total candidate keys tried", "counter", float64(snap.KeysTried)},
		{"candidates_accepted_total", "Total decodings that passed the printable filter", "counter", float64(snap.CandidatesAccepted)},
		{"candidates_rejected_total", "Total decodings rejected by the printable filter", "counter", float64(snap.CandidatesRejected)},
		{"keys_recovered_total", "Total searches that recovered a key", "counter", float64(snap.KeysRecovered)},
		{"searches_empty_total", "Total searches with no acceptable candidate", "counter", float64(snap.SearchesEmpty)},
		{"codec_errors_total", "Total rejected hex or base64 inputs", "counter", float64(snap.CodecErrors)},
		{"uptime_seconds", "Time since the collector was created", "gauge", snap.Uptime.Seconds()},
	}

	for _, s := range series {
		e.writeHelp(w, s.name, s.help)
		e.writeType(w, s.name, s.typ)
		if s.name == "attacks_total" {
			e.writeStrategy(w, s.name, labels, "letter-score", snap.ScoreAttacks)
			e.writeStrategy(w, s.name, labels, "word-hits", snap.WordAttacks)
			e.writeStrategy(w, s.name, labels, "repeating-key", snap.RepeatingAttacks)
			continue
		}
		e.writeMetric(w, s.name, labels, s.value)
	}

	e.writeHistogram(w, "attack_duration_microseconds", "Attack duration in microseconds", labels, snap.AttackLatency)
}

func (e *PrometheusExporter) writeStrategy(w io.Writer, name, labels, strategy string, v uint64) {
	l := fmt.Sprintf("strategy=%q", strategy)
	if labels != "" {
		l = labels + "," + l
	}
	e.writeMetric(w, name, l, float64(v))
}

func (e *PrometheusExporter) writeHelp(w io.Writer, name, help string) {
	fmt.Fprintf(w, "# HELP %s_%s %s\n", e.namespace, name, help)
}

func (e *PrometheusExporter) writeType(w io.Writer, name, typ string) {
	fmt.Fprintf(w, "# TYPE %s_%s %s\n", e.namespace, name, typ)
}

func (e *PrometheusExporter) writeMetric(w io.Writer, name, labels string, value float64) {
	if labels != "" {
		fmt.Fprintf(w, "%s_%s{%s} %g\n", e.namespace, name, labels, value)
	} else {
		fmt.Fprintf(w, "%s_%s %g\n", e.namespace, name, value)
	}
}

func (e *PrometheusExporter) writeHistogram(w io.Writer, name, help, labels string, h HistogramSummary) {
	e.writeHelp(w, name, help)
	e.writeType(w, name, "histogram")

	fullName := e.namespace + "_" + name
	sep := ""
	if labels != "" {
		sep = ","
	}

	for _, b := range h.Buckets {
		le := fmt.Sprintf("%g", b.UpperBound)
		if math.IsInf(b.UpperBound, 1) {
			le = "+Inf"
		}
		fmt.Fprintf(w, "%s_bucket{%s%sle=\"%s\"} %d\n", fullName, labels, sep, le, b.Count)
	}

	if labels != "" {
		fmt.Fprintf(w, "%s_sum{%s} %g\n", fullName, labels, h.Sum)
		fmt.Fprintf(w, "%s_count{%s} %d\n", fullName, labels, h.Count)
	} else {
		fmt.Fprintf(w, "%s_sum %g\n", fullName, h.Sum)
		fmt.Fprintf(w, "%s_count %d\n", fullName, h.Count)
	}
}

// formatLabels converts Labels to Prometheus label format, sorted by key.
func (e *PrometheusExporter) formatLabels(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=\"%s\"", k, escapePromValue(labels[k])))
	}
	return strings.Join(parts, ",")
}

var promEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapePromValue(s string) string {
	return promEscaper.Replace(s)
}
