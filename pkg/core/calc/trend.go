package calc

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

var (
	// ErrInsufficientData reports a series too short to analyze.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSeriesMismatch reports values and periods of different lengths.
	ErrSeriesMismatch = errors.New("series length mismatch")
)

// TrendAnalysis computes multi-period statistics over a metric's series.
// values and periods must be index-aligned and hold at least two
// entries. Extrema report the first period at which they occur. A zero
// prior value makes that single step rate 0 instead of failing the whole
// analysis; the degradation is local. The result owns copies of both
// slices, so later mutation of the caller's data cannot corrupt it.
func TrendAnalysis(metric models.MetricKind, values []float64, periods []temporal.Period) (TrendResult, error) {
	if len(values) != len(periods) {
		return TrendResult{}, fmt.Errorf("trend for %s: %d values vs %d periods: %w",
			metric, len(values), len(periods), ErrSeriesMismatch)
	}
	if len(values) < 2 {
		return TrendResult{}, fmt.Errorf("trend for %s needs at least 2 values, got %d: %w",
			metric, len(values), ErrInsufficientData)
	}

	vals := make([]float64, len(values))
	copy(vals, values)
	pers := make([]temporal.Period, len(periods))
	copy(pers, periods)

	minIdx, maxIdx := 0, 0
	for i, v := range vals {
		if v < vals[minIdx] {
			minIdx = i
		}
		if v > vals[maxIdx] {
			maxIdx = i
		}
	}

	growth := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		if vals[i-1] == 0 {
			growth = append(growth, 0)
			continue
		}
		growth = append(growth, (vals[i]-vals[i-1])/vals[i-1]*100)
	}

	return TrendResult{
		Type:          CalcTrendAnalysis,
		Metric:        metric,
		Periods:       pers,
		Values:        vals,
		Mean:          stat.Mean(vals, nil),
		StdDev:        stat.PopStdDev(vals, nil),
		MinValue:      vals[minIdx],
		MinPeriod:     pers[minIdx],
		MaxValue:      vals[maxIdx],
		MaxPeriod:     pers[maxIdx],
		GrowthRates:   growth,
		AverageGrowth: stat.Mean(growth, nil),
	}, nil
}
