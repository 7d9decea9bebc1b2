package exporter

import (
	"strconv"
	"strings"

	"strikecharts/pkg/contracts/domain"
)

// formatCount formats a frequency for CSV output
func formatCount(n int) string {
	return strconv.Itoa(n)
}

// reportRecords renders a report table as CSV records
func reportRecords(table domain.ReportTable) [][]string {
	records := make([][]string, len(table))
	for i, e := range table {
		records[i] = []string{e.Category.String(), formatCount(e.Count)}
	}
	return records
}

// reportFileName derives a file name from the chart's sheet name, falling
// back to the report name when the sheet name has nothing usable.
func reportFileName(report string, chart domain.ChartSpec, ext string) string {
	name := sanitizeFileName(chart.SheetName)
	if name == "" {
		name = sanitizeFileName(report)
	}
	if name == "" {
		name = "report"
	}
	return name + ext
}

// sanitizeFileName keeps letters, digits, dash and underscore
func sanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
