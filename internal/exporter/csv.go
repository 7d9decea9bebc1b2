package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"strikecharts/internal/errors"
	"strikecharts/pkg/contracts/domain"
)

// ReportHeaders is the header row of every report CSV
var ReportHeaders = []string{"Category", "Count"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return errors.NewStorageError("failed to open file", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return errors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return errors.NewStorageError("failed to write headers", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV", err)
	}
	return nil
}

// WriteReport writes table as a Category,Count CSV with a UTF-8 BOM
func (w *CSVWriter) WriteReport(filePath string, table domain.ReportTable) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   ReportHeaders,
		Records:   reportRecords(table),
		BOMPrefix: true,
	})
}

// CSVExporter writes one CSV per report into a directory
type CSVExporter struct {
	dir    string
	writer *CSVWriter
}

// NewCSVExporter creates an exporter writing into dir
func NewCSVExporter(dir string, logger *slog.Logger) *CSVExporter {
	return &CSVExporter{dir: dir, writer: NewCSVWriter(logger)}
}

// Path returns the file a report is exported to
func (e *CSVExporter) Path(report string, chart domain.ChartSpec) string {
	return filepath.Join(e.dir, reportFileName(report, chart, ".csv"))
}

// Export writes the report's CSV
func (e *CSVExporter) Export(ctx context.Context, report string, chart domain.ChartSpec, table domain.ReportTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.writer.WriteReport(e.Path(report, chart), table)
}
