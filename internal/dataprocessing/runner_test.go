package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"strikecharts/internal/config"
	"strikecharts/internal/errors"
	"strikecharts/internal/exporter"
	"strikecharts/internal/shared/testutil"
	"strikecharts/pkg/contracts/domain"
)

type recordingExporter struct {
	reports []string
	tables  map[string]domain.ReportTable
	err     error
}

func (r *recordingExporter) Export(_ context.Context, report string, _ domain.ChartSpec, table domain.ReportTable) error {
	if r.err != nil {
		return r.err
	}
	if r.tables == nil {
		r.tables = make(map[string]domain.ReportTable)
	}
	r.reports = append(r.reports, report)
	r.tables[report] = table
	return nil
}

type failingEmitter struct{ failOn string }

func (e failingEmitter) Emit(ctx context.Context, f *excelize.File, chart domain.ChartSpec, table domain.ReportTable) error {
	if chart.SheetName == e.failOn {
		return fmt.Errorf("disk full")
	}
	return exporter.NewWorkbookEmitter(nil).Emit(ctx, f, chart, table)
}

func strikeWorkbook(t *testing.T) string {
	t.Helper()

	strikes := []testutil.Strike{
		{Year: 2010, Month: 1, Operator: "UNKNOWN"},
		{Year: 2010, Month: 1, Operator: "UNKNOWN"},
		{Year: 2011, Month: 2, Operator: "BB"},
	}
	for i := 0; i < 10; i++ {
		strikes = append(strikes, testutil.Strike{Year: 2012, Month: 12, Operator: "AA"})
	}
	return testutil.WriteWorkbook(t, "Sheet1", testutil.StrikeRows(strikes...))
}

func TestRunnerRun(t *testing.T) {
	path := strikeWorkbook(t)
	logger, logs := testutil.NewTestLogger(t)
	side := &recordingExporter{}

	r := NewRunner(exporter.NewWorkbookEmitter(logger), RunnerOptions{
		Concurrency: 3,
		Exporters:   []ReportExporter{side},
	}, logger, nil)

	results, err := r.Run(context.Background(), path, DefaultReports())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"2010", "2011", "2012"}, results[0].Table.Categories())
	assert.Equal(t, []string{"1", "2", "12"}, results[1].Table.Categories())
	assert.Equal(t, []string{"AA", "BB"}, results[2].Table.Categories())
	assert.Equal(t, []string{config.ReportYears, config.ReportMonths, config.ReportAirlines}, side.reports)

	f := testutil.OpenWorkbook(t, path)
	assert.Equal(t, []string{"Sheet1", "ChartForYears", "ChartForMonths", "ChartForAirlines"}, f.GetSheetList())

	rows, err := f.GetRows("ChartForYears")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2010", "2"}, {"2011", "1"}, {"2012", "10"}}, rows)

	rows, err = f.GetRows("ChartForAirlines")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"AA", "10"}, {"BB", "1"}}, rows)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "All reports written")
	testutil.AssertNoErrors(t, logs)
}

func TestRunnerRunTwice(t *testing.T) {
	path := strikeWorkbook(t)
	r := NewRunner(exporter.NewWorkbookEmitter(nil), RunnerOptions{}, nil, nil)

	_, err := r.Run(context.Background(), path, DefaultReports())
	require.NoError(t, err)
	_, err = r.Run(context.Background(), path, DefaultReports())
	require.NoError(t, err)

	f := testutil.OpenWorkbook(t, path)
	assert.Len(t, f.GetSheetList(), 4)

	rows, err := f.GetRows("ChartForMonths")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}, {"2", "1"}, {"12", "10"}}, rows)
}

func TestRunnerBeforeSave(t *testing.T) {
	path := strikeWorkbook(t)
	var calls []string

	r := NewRunner(exporter.NewWorkbookEmitter(nil), RunnerOptions{
		BeforeSave: func(p string) error {
			calls = append(calls, p)
			return nil
		},
	}, nil, nil)

	_, err := r.Run(context.Background(), path, DefaultReports())
	require.NoError(t, err)
	assert.Equal(t, []string{path}, calls)
}

func TestRunnerSourceSheet(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Strikes")
	require.NoError(t, err)
	rows := testutil.StrikeRows(testutil.Strike{Year: 2015, Month: 6, Operator: "AA"})
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Strikes", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "strikes.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	r := NewRunner(exporter.NewWorkbookEmitter(nil), RunnerOptions{SourceSheet: "Strikes"}, nil, nil)
	results, err := r.Run(context.Background(), path, DefaultReports()[:1])
	require.NoError(t, err)
	assert.Equal(t, []string{"2015"}, results[0].Table.Categories())
}

func TestRunnerErrors(t *testing.T) {
	t.Run("missing workbook", func(t *testing.T) {
		r := NewRunner(exporter.NewWorkbookEmitter(nil), RunnerOptions{}, nil, nil)
		_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), DefaultReports())
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeWorkbook))

		appErr, _ := errors.AsAppError(err)
		assert.Equal(t, StageRead, appErr.Context[errors.ContextStage])
	})

	t.Run("missing source sheet", func(t *testing.T) {
		r := NewRunner(exporter.NewWorkbookEmitter(nil), RunnerOptions{SourceSheet: "Nope"}, nil, nil)
		_, err := r.Run(context.Background(), strikeWorkbook(t), DefaultReports())
		assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	})

	t.Run("bad header stops before writing", func(t *testing.T) {
		path := strikeWorkbook(t)
		specs := DefaultReports()
		specs[1].HeaderLabel = "Month"

		r := NewRunner(exporter.NewWorkbookEmitter(nil), RunnerOptions{}, nil, nil)
		_, err := r.Run(context.Background(), path, specs)
		require.Error(t, err)

		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrTypeMissingHeaderArtifact, appErr.Type)
		assert.Equal(t, config.ReportMonths, appErr.Context[errors.ContextReport])
		assert.Equal(t, StageHeaderFilter, appErr.Context[errors.ContextStage])

		f := testutil.OpenWorkbook(t, path)
		assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	})

	t.Run("emit failure keeps earlier reports", func(t *testing.T) {
		path := strikeWorkbook(t)
		r := NewRunner(failingEmitter{failOn: "ChartForMonths"}, RunnerOptions{}, nil, nil)

		_, err := r.Run(context.Background(), path, DefaultReports())
		require.Error(t, err)

		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, config.ReportMonths, appErr.Context[errors.ContextReport])
		assert.Equal(t, StageEmit, appErr.Context[errors.ContextStage])

		f := testutil.OpenWorkbook(t, path)
		assert.Equal(t, []string{"Sheet1", "ChartForYears"}, f.GetSheetList())
	})

	t.Run("exporter failure", func(t *testing.T) {
		side := &recordingExporter{err: fmt.Errorf("no space")}
		r := NewRunner(exporter.NewWorkbookEmitter(nil), RunnerOptions{Exporters: []ReportExporter{side}}, nil, nil)

		_, err := r.Run(context.Background(), strikeWorkbook(t), DefaultReports())
		require.Error(t, err)
		appErr, _ := errors.AsAppError(err)
		assert.Equal(t, StageExport, appErr.Context[errors.ContextStage])
	})
}

func TestResultString(t *testing.T) {
	res := &Result{
		Spec:     specFor(t, config.ReportYears),
		Table:    domain.ReportTable{{Category: domain.NumberCategory(2010), Count: 2}},
		RowsRead: 3,
	}
	assert.Equal(t, "years: 1 categories from 3 rows -> sheet ChartForYears", res.String())
}
