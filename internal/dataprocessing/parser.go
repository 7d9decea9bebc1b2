package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"strikecharts/internal/errors"
	"strikecharts/pkg/contracts/domain"
)

// FirstSheet returns the name of the workbook's first sheet
func FirstSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.NewNotFoundError("worksheet")
	}
	return sheets[0], nil
}

// ReadTable reads every row of sheet as raw cell values. Cells stored as
// strings are marked as text so "01" stays "01" rather than becoming the
// number 1. Rows are padded to the sheet's used width so trailing empty cells
// read as blanks; a row is only short when the whole sheet is narrower than
// the requested column.
func ReadTable(f *excelize.File, sheet string) (domain.Table, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("worksheet %q", sheet))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewWorkbookError(fmt.Sprintf("failed to read rows of %q", sheet), err)
	}

	width := dimensionWidth(f, sheet)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	table := make(domain.Table, len(rows))
	for i, values := range rows {
		row := make(domain.Row, width)
		for j, raw := range values {
			cell, err := readCell(f, sheet, j+1, i+1, raw)
			if err != nil {
				return nil, err
			}
			row[j] = cell
		}
		table[i] = row
	}
	return table, nil
}

// readCell pairs raw with the type the workbook stores for it. Only values
// that would otherwise read as numbers need the lookup.
func readCell(f *excelize.File, sheet string, col, row int, raw string) (domain.Cell, error) {
	if domain.ParseCategory(raw).Kind != domain.CategoryNumber {
		return domain.Cell{Raw: raw, Text: raw != ""}, nil
	}

	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.Cell{}, errors.NewParsingError("invalid cell coordinate", err)
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return domain.Cell{}, errors.NewWorkbookError(fmt.Sprintf("failed to read type of %s!%s", sheet, name), err)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return domain.Cell{Raw: raw}, nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return domain.Cell{Raw: "TRUE", Text: true}, nil
		}
		return domain.Cell{Raw: "FALSE", Text: true}, nil
	default:
		return domain.Cell{Raw: raw, Text: true}, nil
	}
}

// dimensionWidth returns the column count of the sheet's declared used range,
// or 0 when the sheet carries no usable dimension.
func dimensionWidth(f *excelize.File, sheet string) int {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return 0
	}
	parts := strings.Split(dim, ":")
	col, _, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return col
}
