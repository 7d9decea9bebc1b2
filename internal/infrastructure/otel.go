package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"strikecharts/internal/config"
)

// InstrumentationName identifies spans and instruments produced by this module
const InstrumentationName = "strikecharts"

// Telemetry holds the tracer, meter and pipeline instruments for one run
type Telemetry struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Metrics *PipelineMetrics

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	metricsFile    string
	traceOut       io.Closer
	logger         *slog.Logger
}

// NoopTelemetry returns telemetry that records nothing
func NoopTelemetry() *Telemetry {
	meter := metricnoop.NewMeterProvider().Meter(InstrumentationName)
	metrics, _ := NewPipelineMetrics(meter)
	return &Telemetry{
		Tracer:  tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:   meter,
		Metrics: metrics,
		logger:  slog.Default(),
	}
}

// InitializeTelemetry sets up tracing and metrics according to cfg. Providers
// are not installed globally; callers pass the Telemetry explicitly.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := NoopTelemetry()
	t.logger = logger

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	if err := t.initializeTracing(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.MetricsFile != "" {
		if err := t.initializeMetrics(cfg, res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.Info("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

// initializeTracing sets up the span exporter
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	var out io.Writer
	switch cfg.TraceExporter {
	case "none", "":
		return nil
	case "stdout":
		out = os.Stdout
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		t.traceOut = f
		out = f
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	t.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)
	t.Tracer = t.tracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(config.AppVersion))
	return nil
}

// initializeMetrics backs the meter with a private Prometheus registry
func (t *Telemetry) initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource) error {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.registry = registry
	t.metricsFile = cfg.MetricsFile
	t.Meter = t.meterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(config.AppVersion))

	metrics, err := NewPipelineMetrics(t.Meter)
	if err != nil {
		return err
	}
	t.Metrics = metrics
	return nil
}

// Shutdown flushes spans, writes the metrics textfile and releases files
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.registry != nil {
		if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
			errs = append(errs, fmt.Errorf("create metrics directory: %w", err))
		} else if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		} else {
			t.logger.InfoContext(ctx, "Metrics written", slog.String("path", t.metricsFile))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if t.traceOut != nil {
		if err := t.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PipelineMetrics are the instruments updated by report runs
type PipelineMetrics struct {
	RowsRead       metric.Int64Counter
	Categories     metric.Int64Counter
	EntriesRemoved metric.Int64Counter
	ReportsEmitted metric.Int64Counter
	StageDuration  metric.Float64Histogram
}

// NewPipelineMetrics creates the report pipeline instruments
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"strike_rows_read",
		metric.WithDescription("Rows read from the incident sheet, header included"),
	)
	if err != nil {
		return nil, err
	}

	categories, err := meter.Int64Counter(
		"strike_categories",
		metric.WithDescription("Distinct categories per report and stage"),
	)
	if err != nil {
		return nil, err
	}

	removed, err := meter.Int64Counter(
		"strike_entries_removed",
		metric.WithDescription("Frequency entries removed by filters"),
	)
	if err != nil {
		return nil, err
	}

	emitted, err := meter.Int64Counter(
		"strike_reports_emitted",
		metric.WithDescription("Reports written into the workbook"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"strike_stage_duration",
		metric.WithDescription("Pipeline stage duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsRead:       rowsRead,
		Categories:     categories,
		EntriesRemoved: removed,
		ReportsEmitted: emitted,
		StageDuration:  duration,
	}, nil
}

// RecordStage records how long a stage of a report took
func (m *PipelineMetrics) RecordStage(ctx context.Context, report, stage string, d time.Duration) {
	m.StageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("report", report),
		attribute.String("stage", stage),
	))
}

// RecordCategories records the number of entries a stage produced
func (m *PipelineMetrics) RecordCategories(ctx context.Context, report, stage string, n int) {
	m.Categories.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("report", report),
		attribute.String("stage", stage),
	))
}

// RecordRemoved records entries dropped by a filter for the given reason
func (m *PipelineMetrics) RecordRemoved(ctx context.Context, report, reason string, n int) {
	if n == 0 {
		return
	}
	m.EntriesRemoved.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("report", report),
		attribute.String("reason", reason),
	))
}

// RecordEmitted counts a report written to the workbook
func (m *PipelineMetrics) RecordEmitted(ctx context.Context, report string) {
	m.ReportsEmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("report", report)))
}
