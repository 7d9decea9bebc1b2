// Package exporter writes finished report tables out of the pipeline.
//
// This package contains three components:
//
// WorkbookEmitter: writes a report's (category, count) rows into its own sheet
// of the source workbook and adds a column chart over them.
//
// CSVWriter: Core CSV writing functionality with optional UTF-8 BOM for Excel
// compatibility. CSVExporter uses it to drop one CSV per report into a
// directory.
//
// BarChartRenderer: draws the same bar chart as a PNG with gonum/plot.
//
// Example usage:
//
//	emitter := exporter.NewWorkbookEmitter(logger)
//	if err := emitter.Emit(ctx, f, chart, table); err != nil {
//	    return err
//	}
//
//	csvs := exporter.NewCSVExporter("out/csv", logger)
//	err := csvs.Export(ctx, "years", chart, table)
package exporter
