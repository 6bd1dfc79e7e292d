package main

import (
	"flag"
	"fmt"
	"maps"
	"strings"

	"github.com/sara-star-quant/xorbreak/pkg/dictionary"
	"github.com/sara-star-quant/xorbreak/pkg/metrics"
)

// commonFlags are shared by every attack command.
type commonFlags struct {
	logLevel    string
	logFormat   string
	logColor    bool
	tracing     string
	showMetrics bool
	dictPath    string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.logLevel, "log-level", "warn", "Log level: debug, info, warn, error, silent")
	fs.StringVar(&c.logFormat, "log-format", "text", "Log format: text or json")
	fs.BoolVar(&c.logColor, "log-color", false, "Color log levels in text output")
	fs.StringVar(&c.tracing, "tracing", "none", "Tracing mode: none, simple, otel (requires -tags otel)")
	fs.BoolVar(&c.showMetrics, "metrics", false, "Print Prometheus metrics after the run")
	fs.StringVar(&c.dictPath, "dict", "", "Word list file (default: built-in English list)")
	return c
}

// observability bundles what setupObservability configures.
type observability struct {
	logger    *metrics.Logger
	collector *metrics.Collector
	tracer    metrics.Tracer
}

func setupObservability(e *env, c *commonFlags, command string) (*observability, error) {
	level, err := parseLogLevel(c.logLevel)
	if err != nil {
		return nil, err
	}

	format, err := parseLogFormat(c.logFormat)
	if err != nil {
		return nil, err
	}

	logger := metrics.NewLogger(
		metrics.WithOutput(e.stderr),
		metrics.WithLevel(level),
		metrics.WithFormat(format),
		metrics.WithColor(c.logColor),
		metrics.WithFields(metrics.Fields{"app": "xorbreak", "command": command}),
	)
	metrics.SetLogger(logger)

	var tracer metrics.Tracer
	switch strings.ToLower(c.tracing) {
	case "none":
		tracer = metrics.NoOpTracer{}
	case "simple":
		tracer = metrics.NewSimpleTracer()
	case "otel":
		if !metrics.OTelEnabled() {
			return nil, fmt.Errorf("otel tracing not enabled (build with -tags otel)")
		}
		tracer = metrics.NewOTelTracer("xorbreak")
	default:
		return nil, fmt.Errorf("invalid tracing mode: %s (use none, simple, or otel)", c.tracing)
	}
	metrics.SetTracer(tracer)

	collector := metrics.NewCollector(metrics.Labels{
		"service": "xorbreak",
		"command": command,
	})
	metrics.SetGlobal(collector)

	return &observability{logger: logger, collector: collector, tracer: tracer}, nil
}

// finish logs recorded spans and prints metrics when requested.
func (o *observability) finish(e *env, c *commonFlags) {
	if st, ok := o.tracer.(*metrics.SimpleTracer); ok {
		for _, s := range st.Spans() {
			fields := metrics.Fields{}
			maps.Copy(fields, s.Attributes)
			fields["span"] = s.Name
			fields["duration"] = s.Duration.String()
			if s.Error != nil {
				fields["error"] = s.Error.Error()
			}
			o.logger.Debug("span finished", fields)
		}
	}
	if c.showMetrics {
		metrics.NewPrometheusExporter(o.collector, "xorbreak").WriteMetrics(e.stdout)
	}
}

func loadDictionary(c *commonFlags, logger *metrics.Logger) (*dictionary.Dictionary, error) {
	if c.dictPath == "" {
		return dictionary.Default(), nil
	}
	d, err := dictionary.LoadFile(c.dictPath)
	if err != nil {
		return nil, err
	}
	logger.Info("dictionary loaded", metrics.Fields{
		"path":   c.dictPath,
		"words":  d.Len(),
		"digest": d.Digest(),
	})
	return d, nil
}

func parseLogLevel(level string) (metrics.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return metrics.LevelDebug, nil
	case "info":
		return metrics.LevelInfo, nil
	case "warn", "warning":
		return metrics.LevelWarn, nil
	case "error":
		return metrics.LevelError, nil
	case "silent", "off", "none":
		return metrics.LevelSilent, nil
	default:
		return metrics.LevelInfo, fmt.Errorf("invalid log level: %s (use debug, info, warn, error, silent)", level)
	}
}

func parseLogFormat(format string) (metrics.Format, error) {
	switch strings.ToLower(format) {
	case "text":
		return metrics.FormatText, nil
	case "json":
		return metrics.FormatJSON, nil
	default:
		return metrics.FormatText, fmt.Errorf("invalid log format: %s (use text or json)", format)
	}
}
