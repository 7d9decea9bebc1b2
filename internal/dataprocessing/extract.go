package dataprocessing

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"strikecharts/internal/errors"
	"strikecharts/pkg/contracts/domain"
)

// ExtractColumn returns the value at column for every row of t, in row order.
// The header row is included, so position 0 holds the column label. A row
// narrower than column+1 is malformed input and aborts extraction.
func ExtractColumn(t domain.Table, column int) ([]domain.Observation, error) {
	if column < 0 {
		return nil, errors.NewAppValidationError(fmt.Sprintf("column index %d is negative", column))
	}

	observations := make([]domain.Observation, 0, len(t))
	for i, row := range t {
		if len(row) <= column {
			return nil, errors.NewMalformedRowError(i, column, len(row))
		}
		cell, err := excelize.CoordinatesToCellName(column+1, i+1)
		if err != nil {
			return nil, errors.NewParsingError("invalid cell coordinate", err)
		}
		observations = append(observations, domain.Observation{
			Cell:  cell,
			Value: row[column].Category(),
		})
	}
	return observations, nil
}
