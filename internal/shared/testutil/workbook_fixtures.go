package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// StrikeHeader is the header row of the incident sheet fixture. Column
// positions match the source workbook: year at 1, month at 2, operator at 5.
var StrikeHeader = []interface{}{
	"Record ID", "Incident Year", "Incident Month", "Incident Day",
	"Operator ID", "Operator", "Aircraft", "Species Name",
}

// Strike is one incident row of the fixture
type Strike struct {
	Year     interface{}
	Month    interface{}
	Operator interface{}
}

// StrikeRows builds the header plus one row per strike
func StrikeRows(strikes ...Strike) [][]interface{} {
	rows := make([][]interface{}, 0, len(strikes)+1)
	rows = append(rows, StrikeHeader)
	for i, s := range strikes {
		rows = append(rows, []interface{}{
			i + 1, s.Year, s.Month, 1, "OP", s.Operator, "B-737", "Gull",
		})
	}
	return rows
}

// WriteWorkbook saves rows into sheet of a new workbook in t.TempDir() and
// returns its path
func WriteWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("failed to rename sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("invalid row %d: %v", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row %d: %v", i, err)
		}
	}

	path := filepath.Join(t.TempDir(), "strikes.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// OpenWorkbook opens path and closes it when the test ends
func OpenWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}
