package dataprocessing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"strikecharts/internal/errors"
	"strikecharts/internal/shared/testutil"
	"strikecharts/pkg/contracts/domain"
)

func TestReadTable(t *testing.T) {
	rows := [][]interface{}{
		{"Record ID", "Incident Year", "Incident Month", "Day", "Operator ID", "Operator"},
		{1, 2010, 3, 14, "AAL", "AMERICAN AIRLINES"},
		{2, 2011},
	}
	path := testutil.WriteWorkbook(t, "Strikes", rows)
	f := testutil.OpenWorkbook(t, path)

	sheet, err := FirstSheet(f)
	require.NoError(t, err)
	assert.Equal(t, "Strikes", sheet)

	table, err := ReadTable(f, sheet)
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, 2, table.DataRows())

	assert.Equal(t, domain.Cell{Raw: "Incident Year", Text: true}, table[0][1])
	assert.Equal(t, domain.Cell{Raw: "2010"}, table[1][1])
	assert.Equal(t, domain.Cell{Raw: "AMERICAN AIRLINES", Text: true}, table[1][5])

	// trailing empty cells are padded to the sheet width
	require.Len(t, table[2], 6)
	assert.Equal(t, domain.Cell{}, table[2][5])
}

func TestReadTableRawNumbers(t *testing.T) {
	rows := [][]interface{}{
		{"Record ID", "Incident Year"},
		{1, 2010.5},
	}
	f := testutil.OpenWorkbook(t, testutil.WriteWorkbook(t, "Sheet1", rows))

	table, err := ReadTable(f, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{Raw: "2010.5"}, table[1][1])
}

// textCellWorkbook stores each operator as a string cell, including values
// that look like numbers
func textCellWorkbook(t *testing.T, operators ...string) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	header := []interface{}{"Record ID", "Incident Year", "Incident Month", "Day", "Operator ID", "Operator"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, op := range operators {
		row := i + 2
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), i+1))
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("B%d", row), 2010))
		require.NoError(t, f.SetCellStr("Sheet1", fmt.Sprintf("F%d", row), op))
	}
	require.NoError(t, f.SetCellStr("Sheet1", "B2", "2010"))
	return f
}

func TestReadTableKeepsStringCells(t *testing.T) {
	f := textCellWorkbook(t, "01", "1", "1.0", "AA")

	table, err := ReadTable(f, "Sheet1")
	require.NoError(t, err)
	require.Len(t, table, 5)

	assert.Equal(t, domain.Cell{Raw: "01", Text: true}, table[1][5])
	assert.Equal(t, domain.Cell{Raw: "1", Text: true}, table[2][5])
	assert.Equal(t, domain.Cell{Raw: "1.0", Text: true}, table[3][5])
	assert.Equal(t, domain.Cell{Raw: "2010", Text: true}, table[1][1])
	assert.Equal(t, domain.Cell{Raw: "2010"}, table[2][1])
	assert.Equal(t, domain.Cell{Raw: "1"}, table[1][0])
}

func TestReadTableBoolCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Flag"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", true))

	table, err := ReadTable(f, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, domain.TextCategory("TRUE"), table[1][0].Category())
}

func TestReadTableMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := ReadTable(f, "Nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestReadTableEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	table, err := ReadTable(f, "Sheet1")
	require.NoError(t, err)
	assert.Empty(t, table)
	assert.Equal(t, 0, table.DataRows())
}
