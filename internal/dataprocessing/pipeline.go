package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"strikecharts/internal/config"
	"strikecharts/internal/errors"
	"strikecharts/internal/infrastructure"
	"strikecharts/pkg/contracts/domain"
)

// Pipeline stage names, used in error context, spans and metrics
const (
	StageRead            = "read"
	StageExtract         = "extract"
	StageAggregate       = "aggregate"
	StageHeaderFilter    = "header_filter"
	StageMagnitudeFilter = "magnitude_filter"
	StageEmit            = "emit"
	StageExport          = "export"
)

// ReportSpec is the configuration record of one report variant. The three
// wildlife reports differ only in these fields.
type ReportSpec struct {
	Name                 string
	ColumnIndex          int
	HeaderLabel          string
	Chart                domain.ChartSpec
	ApplyMagnitudeFilter bool
	Magnitude            MagnitudeOptions
}

// SpecFromConfig converts a configured report into a ReportSpec
func SpecFromConfig(rc config.ReportConfig) ReportSpec {
	return ReportSpec{
		Name:        rc.Name,
		ColumnIndex: rc.Column,
		HeaderLabel: rc.HeaderLabel,
		Chart: domain.ChartSpec{
			SheetName:  rc.SheetName,
			Title:      rc.ChartTitle,
			XAxisTitle: rc.XAxisTitle,
			YAxisTitle: rc.YAxisTitle,
			Anchor:     rc.ChartAnchor,
		},
		ApplyMagnitudeFilter: rc.MagnitudeFilter,
		Magnitude: MagnitudeOptions{
			Ratio:    rc.MagnitudeRatio,
			Sentinel: rc.Sentinel,
			Match:    rc.SentinelMatch,
		},
	}
}

// SpecsFromConfig converts every configured report
func SpecsFromConfig(reports []config.ReportConfig) []ReportSpec {
	specs := make([]ReportSpec, len(reports))
	for i, rc := range reports {
		specs[i] = SpecFromConfig(rc)
	}
	return specs
}

// DefaultReports returns the year, month and operator report specs
func DefaultReports() []ReportSpec {
	return SpecsFromConfig(config.DefaultReports())
}

// Result is the outcome of building one report
type Result struct {
	Spec ReportSpec
	// Table is the final, chart-ordered ReportTable
	Table domain.ReportTable
	// RowsRead counts source rows, header included
	RowsRead int
	// Distinct counts aggregated categories, header artifact included
	Distinct int
	// Filter is set when the magnitude filter ran
	Filter *FilterStats
}

// Pipeline turns an incident table into ReportTables
type Pipeline struct {
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
}

// NewPipeline creates a pipeline. Nil arguments fall back to the default
// logger and no-op telemetry.
func NewPipeline(logger *slog.Logger, telemetry *infrastructure.Telemetry) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}
	return &Pipeline{
		logger:    logger.With(slog.String("component", "pipeline")),
		telemetry: telemetry,
	}
}

// Build runs extract, aggregate, header removal, sort and, when enabled, the
// magnitude filter for one report. A table with no rows at all yields an
// empty ReportTable.
func (p *Pipeline) Build(ctx context.Context, table domain.Table, spec ReportSpec) (*Result, error) {
	ctx, span := p.telemetry.Tracer.Start(ctx, "report."+spec.Name, trace.WithAttributes(
		attribute.String("report", spec.Name),
		attribute.Int("column", spec.ColumnIndex),
		attribute.Int("rows", len(table)),
	))
	defer span.End()

	result := &Result{Spec: spec, RowsRead: len(table), Table: domain.ReportTable{}}

	if len(table) == 0 {
		p.logger.WarnContext(ctx, "Source table is empty, report will be empty",
			slog.String("report", spec.Name))
		return result, nil
	}

	var observations []domain.Observation
	err := p.stage(ctx, spec.Name, StageExtract, func(ctx context.Context) error {
		var err error
		observations, err = ExtractColumn(table, spec.ColumnIndex)
		return err
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	var counted domain.ReportTable
	err = p.stage(ctx, spec.Name, StageAggregate, func(ctx context.Context) error {
		counted = Aggregate(observations)
		return nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}
	result.Distinct = len(counted)
	p.telemetry.Metrics.RecordCategories(ctx, spec.Name, StageAggregate, len(counted))
	p.logger.DebugContext(ctx, "Column aggregated",
		slog.String("report", spec.Name),
		slog.Int("observations", len(observations)),
		slog.Int("distinct", len(counted)))

	var reportTable domain.ReportTable
	err = p.stage(ctx, spec.Name, StageHeaderFilter, func(ctx context.Context) error {
		var err error
		reportTable, err = RemoveHeaderArtifact(counted, spec.HeaderLabel)
		return err
	})
	if err != nil {
		return nil, p.fail(span, err)
	}
	p.telemetry.Metrics.RecordRemoved(ctx, spec.Name, "header", 1)

	reportTable = SortByCategory(reportTable)

	if spec.ApplyMagnitudeFilter {
		err = p.stage(ctx, spec.Name, StageMagnitudeFilter, func(ctx context.Context) error {
			attrs := []any{
				slog.String("report", spec.Name),
				slog.Int("categories", len(reportTable)),
				slog.Float64("ratio", spec.Magnitude.Ratio),
				slog.String("sentinel", spec.Magnitude.Sentinel),
			}
			if top, ok := maxEntry(reportTable); ok {
				attrs = append(attrs,
					slog.String("max_category", top.Category.String()),
					slog.Int("max_count", top.Count))
			}
			p.logger.InfoContext(ctx, "Applying magnitude filter", attrs...)

			var stats FilterStats
			reportTable, stats = FilterMagnitude(reportTable, spec.Magnitude)
			result.Filter = &stats

			p.telemetry.Metrics.RecordRemoved(ctx, spec.Name, "sentinel", stats.SentinelRemoved)
			p.telemetry.Metrics.RecordRemoved(ctx, spec.Name, "magnitude", stats.MagnitudeRemoved)
			p.logger.InfoContext(ctx, "Magnitude filter applied",
				slog.String("report", spec.Name),
				slog.Int("max_count", stats.MaxCount),
				slog.Float64("threshold", stats.Threshold),
				slog.Int("sentinel_removed", stats.SentinelRemoved),
				slog.Int("magnitude_removed", stats.MagnitudeRemoved),
				slog.Int("retained", len(reportTable)))
			return nil
		})
		if err != nil {
			return nil, p.fail(span, err)
		}
	}

	result.Table = reportTable
	p.telemetry.Metrics.RecordCategories(ctx, spec.Name, "final", len(reportTable))
	span.SetAttributes(attribute.Int("categories", len(reportTable)))

	p.logger.InfoContext(ctx, "Report table built",
		slog.String("report", spec.Name),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("categories", len(reportTable)),
		slog.Int("total", reportTable.Total()))

	return result, nil
}

// maxEntry returns the first entry holding the largest count
func maxEntry(t domain.ReportTable) (domain.FrequencyEntry, bool) {
	if len(t) == 0 {
		return domain.FrequencyEntry{}, false
	}
	top := t[0]
	for _, e := range t[1:] {
		if e.Count > top.Count {
			top = e
		}
	}
	return top, true
}

// stage runs fn inside a child span, records its duration and tags any error
// with the report and stage name.
func (p *Pipeline) stage(ctx context.Context, report, name string, fn func(context.Context) error) error {
	ctx, span := p.telemetry.Tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.telemetry.Metrics.RecordStage(ctx, report, name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.InStage(err, report, name)
	}
	return nil
}

// fail marks the report span as failed and returns err unchanged
func (p *Pipeline) fail(span trace.Span, err error) error {
	span.SetStatus(codes.Error, err.Error())
	return err
}
