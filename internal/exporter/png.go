package exporter

import (
	"context"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"strikecharts/internal/errors"
	"strikecharts/pkg/contracts/domain"
)

// rotateAfter is the category count above which x labels are slanted
const rotateAfter = 12

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// BarChartRenderer draws report tables as PNG bar charts
type BarChartRenderer struct {
	dir    string
	width  vg.Length
	height vg.Length
	logger *slog.Logger
}

// NewBarChartRenderer creates a renderer writing into dir
func NewBarChartRenderer(dir string, logger *slog.Logger) *BarChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &BarChartRenderer{
		dir:    dir,
		width:  12 * vg.Inch,
		height: 6 * vg.Inch,
		logger: logger,
	}
}

// Path returns the file a report is rendered to
func (r *BarChartRenderer) Path(report string, chart domain.ChartSpec) string {
	return filepath.Join(r.dir, reportFileName(report, chart, ".png"))
}

// Export renders the report's chart
func (r *BarChartRenderer) Export(ctx context.Context, report string, chart domain.ChartSpec, table domain.ReportTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := r.Path(report, chart)
	if err := RenderBarChart(path, chart, table, r.width, r.height); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Chart image written",
		slog.String("report", report),
		slog.String("file_path", path))
	return nil
}

// RenderBarChart draws table as a bar chart titled from chart and saves it
// to path. The format follows the file extension.
func RenderBarChart(path string, chart domain.ChartSpec, table domain.ReportTable, width, height vg.Length) error {
	p := plot.New()
	p.Title.Text = chart.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = chart.XAxisTitle
	p.Y.Label.Text = chart.YAxisTitle
	p.Y.Min = 0

	if len(table) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
	} else {
		values := make(plotter.Values, len(table))
		for i, e := range table {
			values[i] = float64(e.Count)
		}

		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return errors.NewStorageError("failed to build bar chart", err)
		}
		bars.Color = barColor
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		p.NominalX(table.Categories()...)
		if len(table) > rotateAfter {
			p.X.Tick.Label.Rotation = math.Pi / 3
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
		p.Y.Max = float64(table.MaxCount()) * 1.1
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}
	if err := p.Save(width, height, path); err != nil {
		return errors.NewStorageError("failed to save chart image", err)
	}
	return nil
}
