package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("keeps attrs added with With", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "pipeline")).Info("built")

		rec, ok := handler.FindMessage("built")
		require.True(t, ok)
		assert.Equal(t, "pipeline", rec.Attrs["component"])
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("one")
		logger.Info("two")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})
}

func TestWriteWorkbook(t *testing.T) {
	rows := StrikeRows(
		Strike{Year: 2010, Month: 1, Operator: "AA"},
		Strike{Year: 2011, Month: 2, Operator: "UNKNOWN"},
	)
	path := WriteWorkbook(t, "Data", rows)

	f := OpenWorkbook(t, path)
	assert.Equal(t, []string{"Data"}, f.GetSheetList())

	got, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Incident Year", got[0][1])
	assert.Equal(t, "2011", got[2][1])
	assert.Equal(t, "UNKNOWN", got[2][5])
}
