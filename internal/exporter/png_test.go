package exporter

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"strikecharts/pkg/contracts/domain"
)

func decodePNG(t *testing.T, path string) (int, int) {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderBarChart(t *testing.T) {
	many := make(domain.ReportTable, 20)
	for i := range many {
		many[i] = domain.FrequencyEntry{Category: domain.TextCategory(fmt.Sprintf("OPERATOR %02d", i)), Count: i + 1}
	}

	tests := []struct {
		name  string
		table domain.ReportTable
	}{
		{
			name: "years",
			table: domain.ReportTable{
				{Category: domain.NumberCategory(2010), Count: 2},
				{Category: domain.NumberCategory(2011), Count: 1},
			},
		},
		{name: "rotated labels", table: many},
		{name: "empty", table: domain.ReportTable{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "charts", "out.png")

			err := RenderBarChart(path, yearsChart, tt.table, 4*vg.Inch, 3*vg.Inch)
			require.NoError(t, err)

			w, h := decodePNG(t, path)
			assert.Positive(t, w)
			assert.Positive(t, h)
		})
	}
}

func TestBarChartRenderer_Export(t *testing.T) {
	dir := t.TempDir()
	r := NewBarChartRenderer(dir, nil)

	table := domain.ReportTable{{Category: domain.TextCategory("AA"), Count: 10}}
	chart := domain.ChartSpec{SheetName: "ChartForAirlines", Title: "Airlines and # of Collisions"}

	require.NoError(t, r.Export(context.Background(), "airlines", chart, table))
	assert.FileExists(t, filepath.Join(dir, "ChartForAirlines.png"))
}
