package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikecharts/internal/config"
	"strikecharts/internal/errors"
	"strikecharts/pkg/contracts/domain"
)

func entry(label string, count int) domain.FrequencyEntry {
	return domain.FrequencyEntry{Category: domain.ParseCategory(label), Count: count}
}

func TestRemoveHeaderArtifact(t *testing.T) {
	t.Run("drops the header entry", func(t *testing.T) {
		in := domain.ReportTable{entry("Incident Year", 1), entry("2010", 2), entry("2011", 1)}

		out, err := RemoveHeaderArtifact(in, "Incident Year")
		require.NoError(t, err)
		assert.Equal(t, []string{"2010", "2011"}, out.Categories())
		assert.Equal(t, 3, out.Total())
		assert.Len(t, in, 3, "input must not be modified")
	})

	t.Run("header only", func(t *testing.T) {
		out, err := RemoveHeaderArtifact(domain.ReportTable{entry("Operator", 1)}, "Operator")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	tests := []struct {
		name string
		in   domain.ReportTable
	}{
		{"missing", domain.ReportTable{entry("2010", 2)}},
		{"counted twice", domain.ReportTable{entry("Incident Year", 2), entry("2010", 2)}},
		{"empty", domain.ReportTable{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RemoveHeaderArtifact(tt.in, "Incident Year")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeMissingHeaderArtifact))
		})
	}

	t.Run("second removal fails", func(t *testing.T) {
		in := domain.ReportTable{entry("Incident Month", 1), entry("1", 4)}
		once, err := RemoveHeaderArtifact(in, "Incident Month")
		require.NoError(t, err)

		_, err = RemoveHeaderArtifact(once, "Incident Month")
		assert.True(t, errors.IsType(err, errors.ErrTypeMissingHeaderArtifact))
	})
}

func TestFilterMagnitude(t *testing.T) {
	opts := DefaultMagnitudeOptions()

	tests := []struct {
		name      string
		in        domain.ReportTable
		opts      MagnitudeOptions
		want      []string
		sentinel  int
		magnitude int
		max       int
	}{
		{
			name:     "unknown removed and boundary operator kept",
			in:       domain.ReportTable{entry("AA", 10), entry("BB", 1), entry("UNKNOWN", 2)},
			opts:     opts,
			want:     []string{"AA", "BB"},
			sentinel: 1,
			max:      10,
		},
		{
			name:      "operator below threshold removed",
			in:        domain.ReportTable{entry("AA", 20), entry("BB", 1), entry("CC", 2)},
			opts:      opts,
			want:      []string{"AA", "CC"},
			magnitude: 1,
			max:       20,
		},
		{
			name: "count equal to threshold is kept",
			in:   domain.ReportTable{entry("AA", 30), entry("BB", 3), entry("CC", 2)},
			opts: opts,
			want: []string{"AA", "BB"},
			// 0.1 * 30 is exactly 3
			magnitude: 1,
			max:       30,
		},
		{
			name:     "max is taken before sentinel removal",
			in:       domain.ReportTable{entry("UNKNOWN", 100), entry("AA", 9), entry("BB", 10)},
			opts:     opts,
			want:     []string{"BB"},
			sentinel: 1,
			// threshold 10 from UNKNOWN's count, so AA goes
			magnitude: 1,
			max:       100,
		},
		{
			name:     "sentinel removed even when it is the largest",
			in:       domain.ReportTable{entry("UNKNOWN", 50), entry("AA", 50)},
			opts:     opts,
			want:     []string{"AA"},
			sentinel: 1,
			max:      50,
		},
		{
			name: "sentinel equality is exact",
			in:   domain.ReportTable{entry("UNKNOWN AIRLINE", 5), entry("unknown", 5)},
			opts: opts,
			want: []string{"UNKNOWN AIRLINE", "unknown"},
			max:  5,
		},
		{
			name:     "contains match",
			in:       domain.ReportTable{entry("UNKNOWN AIRLINE", 5), entry("AA", 5)},
			opts:     MagnitudeOptions{Ratio: 0.1, Sentinel: "UNKNOWN", Match: config.SentinelMatchContains},
			want:     []string{"AA"},
			sentinel: 1,
			max:      5,
		},
		{
			name: "no sentinel configured",
			in:   domain.ReportTable{entry("UNKNOWN", 5), entry("AA", 5)},
			opts: MagnitudeOptions{Ratio: 0.1},
			want: []string{"UNKNOWN", "AA"},
			max:  5,
		},
		{
			name:      "custom ratio",
			in:        domain.ReportTable{entry("AA", 10), entry("BB", 4), entry("CC", 5)},
			opts:      MagnitudeOptions{Ratio: 0.5, Sentinel: "UNKNOWN"},
			want:      []string{"AA", "CC"},
			magnitude: 1,
			max:       10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stats := FilterMagnitude(tt.in, tt.opts)

			assert.Equal(t, tt.want, out.Categories())
			assert.Equal(t, tt.max, stats.MaxCount)
			assert.Equal(t, tt.sentinel, stats.SentinelRemoved)
			assert.Equal(t, tt.magnitude, stats.MagnitudeRemoved)
			for _, e := range out {
				assert.False(t, tt.opts.matchesSentinel(e.Category))
			}
		})
	}
}

func TestFilterMagnitudeEmpty(t *testing.T) {
	out, stats := FilterMagnitude(domain.ReportTable{}, DefaultMagnitudeOptions())
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Zero(t, stats.MaxCount)
}

func TestThresholdFor(t *testing.T) {
	th, _ := thresholdFor(0.1, 30).Float64()
	assert.Equal(t, 3.0, th)

	th, _ = thresholdFor(0.1, 7).Float64()
	assert.InDelta(t, 0.7, th, 1e-12)
}
