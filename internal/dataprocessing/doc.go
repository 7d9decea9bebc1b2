// Package dataprocessing turns the incident sheet of a wildlife strike
// workbook into per-column frequency reports.
//
// # Architecture
//
// Each report runs the same stages over the shared source table:
//
//  1. ExtractColumn: reads one column of every row, header row included
//  2. Aggregate: collapses the values into (category, count) entries
//  3. RemoveHeaderArtifact: drops the entry the header row produced
//  4. SortByCategory: orders entries for charting
//  5. FilterMagnitude: operator report only, drops the unknown sentinel and
//     entries under a fraction of the largest count
//
// Pipeline.Build runs these stages for one ReportSpec. Runner reads the
// workbook once, builds every report and hands each table to a
// ReportEmitter, saving the workbook after every report.
//
// # Usage
//
//	runner := dataprocessing.NewRunner(exporter.NewWorkbookEmitter(logger),
//	    dataprocessing.RunnerOptions{Concurrency: 2}, logger, telemetry)
//	results, err := runner.Run(ctx, "aircraftWildlifeStrikes.xlsx", dataprocessing.DefaultReports())
//
// # Error Handling
//
// Failures are *errors.AppError values tagged with the report and stage that
// failed. A row too short for the requested column is MALFORMED_ROW; a header
// label not counted exactly once is MISSING_HEADER_ARTIFACT.
package dataprocessing
