// Package aggregate groups validated, period-tagged data points into the
// period → metric → value mapping consumed by the calculator. The
// matcher may emit several candidates per chunk and several chunks may
// describe the same period, so duplicate (period, metric) pairs are the
// normal case, not an error; this package is the single point where they
// are adjudicated.
package aggregate

import (
	"sort"

	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// Aggregation is the grouped view over a set of data points. It retains
// exactly one data point per (period, metric) pair: the one with the
// highest confidence, ties broken by most recently added. Zero value is
// not usable; construct with New or Group.
type Aggregation struct {
	byPeriod map[temporal.Period]map[models.MetricKind]models.FinancialDataPoint
}

// New returns an empty aggregation.
func New() *Aggregation {
	return &Aggregation{
		byPeriod: make(map[temporal.Period]map[models.MetricKind]models.FinancialDataPoint),
	}
}

// Group builds an aggregation from points in slice order. Order matters
// only for confidence ties, where the later point wins.
func Group(points []models.FinancialDataPoint) *Aggregation {
	a := New()
	for _, p := range points {
		a.Add(p)
	}
	return a
}

// Add folds one data point into the aggregation. An equal-confidence
// duplicate replaces the earlier point, so later evidence wins ties.
func (a *Aggregation) Add(point models.FinancialDataPoint) {
	metrics, ok := a.byPeriod[point.Period]
	if !ok {
		metrics = make(map[models.MetricKind]models.FinancialDataPoint)
		a.byPeriod[point.Period] = metrics
	}
	existing, ok := metrics[point.Metric]
	if ok && existing.Confidence > point.Confidence {
		return
	}
	metrics[point.Metric] = point
}

// Periods returns every period with at least one retained point, in
// chronological order.
func (a *Aggregation) Periods() []temporal.Period {
	periods := make([]temporal.Period, 0, len(a.byPeriod))
	for p := range a.byPeriod {
		periods = append(periods, p)
	}
	temporal.SortPeriods(periods)
	return periods
}

// Metrics returns the retained points for one period, keyed by metric.
// The returned map is a copy; mutating it does not affect the
// aggregation.
func (a *Aggregation) Metrics(period temporal.Period) map[models.MetricKind]models.FinancialDataPoint {
	src, ok := a.byPeriod[period]
	if !ok {
		return nil
	}
	out := make(map[models.MetricKind]models.FinancialDataPoint, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Point returns the retained data point for a (period, metric) pair.
func (a *Aggregation) Point(period temporal.Period, metric models.MetricKind) (models.FinancialDataPoint, bool) {
	metrics, ok := a.byPeriod[period]
	if !ok {
		return models.FinancialDataPoint{}, false
	}
	point, ok := metrics[metric]
	return point, ok
}

// Value returns the retained value for a (period, metric) pair.
func (a *Aggregation) Value(period temporal.Period, metric models.MetricKind) (float64, bool) {
	point, ok := a.Point(period, metric)
	if !ok {
		return 0, false
	}
	return point.Value, true
}

// Series returns the values of one metric across every period that has
// it, both slices ordered chronologically and index-aligned. Suitable as
// direct input to trend analysis.
func (a *Aggregation) Series(metric models.MetricKind) ([]temporal.Period, []float64) {
	var periods []temporal.Period
	for p, metrics := range a.byPeriod {
		if _, ok := metrics[metric]; ok {
			periods = append(periods, p)
		}
	}
	temporal.SortPeriods(periods)
	values := make([]float64, len(periods))
	for i, p := range periods {
		values[i] = a.byPeriod[p][metric].Value
	}
	return periods, values
}

// Points returns every retained data point ordered by period then
// metric, for provenance reporting.
func (a *Aggregation) Points() []models.FinancialDataPoint {
	var out []models.FinancialDataPoint
	for _, period := range a.Periods() {
		metrics := a.byPeriod[period]
		kinds := make([]models.MetricKind, 0, len(metrics))
		for k := range metrics {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			out = append(out, metrics[k])
		}
	}
	return out
}

// Len returns the number of retained (period, metric) pairs.
func (a *Aggregation) Len() int {
	n := 0
	for _, metrics := range a.byPeriod {
		n += len(metrics)
	}
	return n
}
