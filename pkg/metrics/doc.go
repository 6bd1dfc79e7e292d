// Package metrics provides observability primitives for the xorbreak
// attack engine.
//
// # Overview
//
// The package offers:
//   - attack counters and latency histograms (Collector)
//   - Prometheus text-format export
//   - a tracing interface with in-memory and OpenTelemetry backends
//   - structured logging with levels
//
// # Metrics Collection
//
//	collector := metrics.NewCollector(metrics.Labels{"instance": "cli"})
//	collector.RecordScoreAttack()
//	collector.RecordKeysTried(256)
//	collector.RecordOutcome(true)
//	snap := collector.Snapshot()
//
// # Prometheus Export
//
//	exporter := metrics.NewPrometheusExporter(collector, "xorbreak")
//	exporter.WriteMetrics(os.Stdout)
//
// # Tracing
//
// The default tracer is a no-op. SimpleTracer keeps spans in memory for
// tests and debugging:
//
//	tracer := metrics.NewSimpleTracer()
//	metrics.SetTracer(tracer)
//	attrs := metrics.AttackAttributes{Strategy: "letter-score", CiphertextLength: 34}
//	ctx, span := metrics.StartSpan(ctx, metrics.SpanAttackScore, attrs.ToMap())
//	// ... run the attack ...
//	attrs.Found = true
//	span.SetAttributes(attrs.ToMap())
//	span.End(err)
//
// Building with -tags otel enables OTelTracer, which forwards spans to the
// globally registered OpenTelemetry provider.
//
// # Logging
//
//	logger := metrics.NewLogger(
//		metrics.WithLevel(metrics.LevelInfo),
//		metrics.WithFormat(metrics.FormatJSON),
//	)
//	logger.Info("key recovered", metrics.Fields{"key": "0x58"})
package metrics
