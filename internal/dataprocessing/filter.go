package dataprocessing

import (
	"math/big"
	"strconv"

	"strikecharts/internal/config"
	"strikecharts/internal/errors"
	"strikecharts/pkg/contracts/domain"
)

// RemoveHeaderArtifact drops the entry produced by counting the header row
// as data. Exactly one entry equal to headerLabel with count 1 must exist;
// anything else means extraction and aggregation disagree about the header.
func RemoveHeaderArtifact(t domain.ReportTable, headerLabel string) (domain.ReportTable, error) {
	idx := t.Find(domain.TextCategory(headerLabel))
	if idx < 0 {
		return nil, errors.NewMissingHeaderArtifactError(headerLabel, 0)
	}
	if t[idx].Count != 1 {
		return nil, errors.NewMissingHeaderArtifactError(headerLabel, t[idx].Count)
	}

	out := make(domain.ReportTable, 0, len(t)-1)
	out = append(out, t[:idx]...)
	out = append(out, t[idx+1:]...)
	return out, nil
}

// MagnitudeOptions configures FilterMagnitude
type MagnitudeOptions struct {
	// Ratio of the largest count below which an entry is dropped
	Ratio float64
	// Sentinel labels an explicitly unknown category; empty disables the check
	Sentinel string
	// Match is config.SentinelMatchEqual or config.SentinelMatchContains
	Match string
}

// DefaultMagnitudeOptions drops UNKNOWN and anything under 10% of the maximum
func DefaultMagnitudeOptions() MagnitudeOptions {
	return MagnitudeOptions{
		Ratio:    config.DefaultMagnitudeRatio,
		Sentinel: config.DefaultSentinel,
		Match:    config.SentinelMatchEqual,
	}
}

// FilterStats describes what FilterMagnitude removed
type FilterStats struct {
	MaxCount         int
	Threshold        float64
	SentinelRemoved  int
	MagnitudeRemoved int
}

// matchesSentinel reports whether c is the unknown-category label
func (o MagnitudeOptions) matchesSentinel(c domain.Category) bool {
	if o.Sentinel == "" || c.Kind == domain.CategoryBlank {
		return false
	}
	if o.Match == config.SentinelMatchContains {
		return c.Contains(o.Sentinel)
	}
	return c.Raw == o.Sentinel
}

// FilterMagnitude removes sentinel categories, then categories whose count is
// strictly below Ratio times the largest count. The maximum is taken from t
// before anything is removed. Input order is preserved.
func FilterMagnitude(t domain.ReportTable, opts MagnitudeOptions) (domain.ReportTable, FilterStats) {
	out := make(domain.ReportTable, 0, len(t))
	if len(t) == 0 {
		return out, FilterStats{}
	}

	stats := FilterStats{MaxCount: t.MaxCount()}
	threshold := thresholdFor(opts.Ratio, stats.MaxCount)
	stats.Threshold, _ = threshold.Float64()

	for _, e := range t {
		if opts.matchesSentinel(e.Category) {
			stats.SentinelRemoved++
			continue
		}
		if new(big.Rat).SetInt64(int64(e.Count)).Cmp(threshold) < 0 {
			stats.MagnitudeRemoved++
			continue
		}
		out = append(out, e)
	}
	return out, stats
}

// thresholdFor computes ratio*max exactly, reading the ratio as the decimal
// it was written as, so 0.1*30 is 3 and not 3.0000000000000004.
func thresholdFor(ratio float64, max int) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(ratio, 'f', -1, 64))
	if !ok {
		r = new(big.Rat).SetFloat64(ratio)
	}
	return r.Mul(r, new(big.Rat).SetInt64(int64(max)))
}
