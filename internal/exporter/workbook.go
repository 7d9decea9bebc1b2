package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"strikecharts/internal/errors"
	"strikecharts/pkg/contracts/domain"
)

// WorkbookEmitter writes report tables and their column charts into a workbook
type WorkbookEmitter struct {
	logger *slog.Logger
}

// NewWorkbookEmitter creates an emitter
func NewWorkbookEmitter(logger *slog.Logger) *WorkbookEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookEmitter{logger: logger.With(slog.String("component", "emitter"))}
}

// Emit (re)creates chart.SheetName, writes one (category, count) row per
// entry starting at A1 and anchors a column chart over them at chart.Anchor.
// An empty table still gets its chart, over the blank first row.
func (e *WorkbookEmitter) Emit(ctx context.Context, f *excelize.File, chart domain.ChartSpec, table domain.ReportTable) error {
	sheet := chart.SheetName

	replaced, err := e.resetSheet(f, sheet)
	if err != nil {
		return err
	}

	for i, entry := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.NewWorkbookError("invalid report row", err)
		}
		row := []interface{}{entry.Category.CellValue(), entry.Count}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.NewWorkbookError(fmt.Sprintf("failed to write row %d of %q", i+1, sheet), err)
		}
	}

	rows := len(table)
	if rows == 0 {
		e.logger.WarnContext(ctx, "Report table is empty, chart will have no data",
			slog.String("sheet", sheet))
		rows = 1
	}

	if err := f.AddChart(sheet, chart.Anchor, columnChart(chart, rows)); err != nil {
		return errors.NewWorkbookError(fmt.Sprintf("failed to add chart to %q", sheet), err)
	}

	e.logger.DebugContext(ctx, "Chart added",
		slog.String("sheet", sheet),
		slog.String("anchor", chart.Anchor),
		slog.Int("rows", len(table)),
		slog.Bool("replaced", replaced))
	return nil
}

// resetSheet deletes sheet if it exists and creates it empty
func (e *WorkbookEmitter) resetSheet(f *excelize.File, sheet string) (bool, error) {
	replaced := false
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return false, errors.NewWorkbookError(fmt.Sprintf("failed to replace sheet %q", sheet), err)
		}
		replaced = true
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return false, errors.NewWorkbookError(fmt.Sprintf("failed to create sheet %q", sheet), err)
	}
	return replaced, nil
}

// columnChart builds a single-series clustered column chart over A1:B<rows>
func columnChart(chart domain.ChartSpec, rows int) *excelize.Chart {
	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Categories: sheetRange(chart.SheetName, "A", rows),
				Values:     sheetRange(chart.SheetName, "B", rows),
			},
		},
		Title:  []excelize.RichTextRun{{Text: chart.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: chart.XAxisTitle}},
		},
		YAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: chart.YAxisTitle}},
		},
	}
}

// sheetRange returns an absolute single-column reference such as
// 'ChartForYears'!$A$1:$A$12
func sheetRange(sheet, col string, rows int) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	return fmt.Sprintf("%s!$%s$1:$%s$%d", quoted, col, col, rows)
}
