package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"strikecharts/internal/errors"
	"strikecharts/internal/infrastructure"
	"strikecharts/pkg/contracts/domain"
)

// ReportEmitter writes a ReportTable and its chart into an open workbook
type ReportEmitter interface {
	Emit(ctx context.Context, f *excelize.File, chart domain.ChartSpec, table domain.ReportTable) error
}

// ReportExporter writes a ReportTable somewhere outside the workbook
type ReportExporter interface {
	Export(ctx context.Context, report string, chart domain.ChartSpec, table domain.ReportTable) error
}

// RunnerOptions configures a Runner
type RunnerOptions struct {
	// Concurrency bounds how many report tables are computed at once
	Concurrency int
	// SourceSheet names the incident sheet; empty means the first sheet
	SourceSheet string
	// BeforeSave runs once with the workbook path before it is first overwritten
	BeforeSave func(path string) error
	Exporters  []ReportExporter
}

// Runner drives every configured report against one workbook
type Runner struct {
	pipeline  *Pipeline
	emitter   ReportEmitter
	opts      RunnerOptions
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
}

// NewRunner creates a runner
func NewRunner(emitter ReportEmitter, opts RunnerOptions, logger *slog.Logger, telemetry *infrastructure.Telemetry) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Runner{
		pipeline:  NewPipeline(logger, telemetry),
		emitter:   emitter,
		opts:      opts,
		logger:    logger.With(slog.String("component", "runner")),
		telemetry: telemetry,
	}
}

// Run reads the incident sheet of the workbook at path, builds every report,
// then writes each report into the workbook and saves it after every report.
// The first failure stops the run.
func (r *Runner) Run(ctx context.Context, path string, specs []ReportSpec) ([]*Result, error) {
	ctx, span := r.telemetry.Tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("workbook", path),
		attribute.Int("reports", len(specs)),
	))
	defer span.End()

	results, err := r.run(ctx, path, specs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return results, err
}

func (r *Runner) run(ctx context.Context, path string, specs []ReportSpec) ([]*Result, error) {
	r.logger.InfoContext(ctx, "Opening workbook", slog.String("path", path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.InStage(errors.NewWorkbookError("failed to open workbook", err), "", StageRead)
	}
	defer f.Close()

	table, err := r.readSource(ctx, f)
	if err != nil {
		return nil, errors.InStage(err, "", StageRead)
	}

	results, err := r.buildAll(ctx, table, specs)
	if err != nil {
		return nil, err
	}

	if r.opts.BeforeSave != nil && len(results) > 0 {
		if err := r.opts.BeforeSave(path); err != nil {
			return nil, errors.InStage(errors.NewStorageError("pre-save hook failed", err), "", StageEmit)
		}
	}

	for _, res := range results {
		if err := r.emit(ctx, f, res); err != nil {
			return nil, err
		}
		if err := r.export(ctx, res); err != nil {
			return nil, err
		}
	}

	r.logger.InfoContext(ctx, "All reports written",
		slog.String("path", path),
		slog.Int("reports", len(results)))
	return results, nil
}

// readSource loads the incident table
func (r *Runner) readSource(ctx context.Context, f *excelize.File) (domain.Table, error) {
	sheet := r.opts.SourceSheet
	if sheet == "" {
		var err error
		if sheet, err = FirstSheet(f); err != nil {
			return nil, err
		}
	}

	table, err := ReadTable(f, sheet)
	if err != nil {
		return nil, err
	}

	r.telemetry.Metrics.RowsRead.Add(ctx, int64(len(table)))
	r.logger.InfoContext(ctx, "Source sheet read",
		slog.String("sheet", sheet),
		slog.Int("rows", len(table)),
		slog.Int("data_rows", table.DataRows()))
	return table, nil
}

// buildAll computes every report table. Each build only reads the shared,
// immutable source table.
func (r *Runner) buildAll(ctx context.Context, table domain.Table, specs []ReportSpec) ([]*Result, error) {
	results := make([]*Result, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.pipeline.Build(gctx, table, spec)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// emit writes one report into the workbook and persists it
func (r *Runner) emit(ctx context.Context, f *excelize.File, res *Result) error {
	ctx, span := r.telemetry.Tracer.Start(ctx, StageEmit, trace.WithAttributes(
		attribute.String("report", res.Spec.Name),
		attribute.String("sheet", res.Spec.Chart.SheetName),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		r.telemetry.Metrics.RecordStage(ctx, res.Spec.Name, StageEmit, time.Since(start))
	}()

	if err := r.emitter.Emit(ctx, f, res.Spec.Chart, res.Table); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errors.InStage(err, res.Spec.Name, StageEmit)
	}
	if err := f.Save(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errors.InStage(errors.NewStorageError("failed to save workbook", err), res.Spec.Name, StageEmit)
	}

	r.telemetry.Metrics.RecordEmitted(ctx, res.Spec.Name)
	r.logger.InfoContext(ctx, "Report written",
		slog.String("report", res.Spec.Name),
		slog.String("sheet", res.Spec.Chart.SheetName),
		slog.Int("categories", len(res.Table)))
	return nil
}

// export hands the report to every side exporter
func (r *Runner) export(ctx context.Context, res *Result) error {
	for _, exp := range r.opts.Exporters {
		if err := exp.Export(ctx, res.Spec.Name, res.Spec.Chart, res.Table); err != nil {
			return errors.InStage(err, res.Spec.Name, StageExport)
		}
	}
	return nil
}

// String summarises a result for CLI output
func (res *Result) String() string {
	return fmt.Sprintf("%s: %d categories from %d rows -> sheet %s",
		res.Spec.Name, len(res.Table), res.RowsRead, res.Spec.Chart.SheetName)
}
