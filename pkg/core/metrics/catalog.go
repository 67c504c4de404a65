// Package metrics defines the extraction catalog: for every financial
// metric an ordered list of text patterns (most specific first) and the
// two-tier plausibility bands used by the range validator. The catalog
// is immutable after construction and injected into the extractor, so
// components stay testable with synthetic pattern sets.
package metrics

import (
	"fmt"
	"regexp"

	"agentic_finqa/pkg/models"
)

// Band is an inclusive numeric range in millions of the reporting
// currency.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the band, bounds included.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Midpoint returns the center of the band.
func (b Band) Midpoint() float64 {
	return (b.Min + b.Max) / 2
}

// MetricSpec declares how one metric is recognized and validated.
// Patterns are ordered from statement-line phrasing with currency and
// unit qualifiers down to bare-keyword fallbacks; each pattern must
// capture the numeric literal in group 1. TableBand covers magnitudes
// plausible as a single comparative-table cell, MainBand the reported
// headline figure. A metric with no bands is accepted unconditionally at
// base confidence. Keywords drive the table-grid row scan in ingestion.
type MetricSpec struct {
	Metric    models.MetricKind
	Patterns  []string
	TableBand *Band
	MainBand  *Band
	Keywords  []string
}

// CompiledMetric is a MetricSpec with its patterns compiled.
type CompiledMetric struct {
	Metric    models.MetricKind
	Patterns  []*regexp.Regexp
	TableBand *Band
	MainBand  *Band
	Keywords  []string
}

// Catalog holds the compiled metric specs in declaration order.
type Catalog struct {
	metrics []*CompiledMetric
	byKind  map[models.MetricKind]*CompiledMetric
}

// NewCatalog compiles and checks a set of metric specs. Every pattern
// must compile and capture at least one group; bands must be ordered and
// must not overlap each other. A shared edge is allowed: the table band
// is checked first, so edge values classify deterministically.
func NewCatalog(specs []MetricSpec) (*Catalog, error) {
	c := &Catalog{byKind: make(map[models.MetricKind]*CompiledMetric, len(specs))}
	for _, spec := range specs {
		if spec.Metric == "" {
			return nil, fmt.Errorf("metric spec with empty metric kind")
		}
		if _, dup := c.byKind[spec.Metric]; dup {
			return nil, fmt.Errorf("duplicate metric spec for %s", spec.Metric)
		}
		if err := checkBands(spec); err != nil {
			return nil, fmt.Errorf("metric %s: %w", spec.Metric, err)
		}
		cm := &CompiledMetric{
			Metric:    spec.Metric,
			TableBand: spec.TableBand,
			MainBand:  spec.MainBand,
			Keywords:  spec.Keywords,
		}
		for _, p := range spec.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("metric %s: pattern %q: %w", spec.Metric, p, err)
			}
			if re.NumSubexp() < 1 {
				return nil, fmt.Errorf("metric %s: pattern %q has no capture group", spec.Metric, p)
			}
			cm.Patterns = append(cm.Patterns, re)
		}
		c.metrics = append(c.metrics, cm)
		c.byKind[spec.Metric] = cm
	}
	return c, nil
}

func checkBands(spec MetricSpec) error {
	for _, b := range []*Band{spec.TableBand, spec.MainBand} {
		if b != nil && b.Min >= b.Max {
			return fmt.Errorf("band bounds out of order: [%g, %g]", b.Min, b.Max)
		}
	}
	tb, mb := spec.TableBand, spec.MainBand
	if tb != nil && mb != nil && tb.Max > mb.Min && tb.Min < mb.Max {
		return fmt.Errorf("table band [%g, %g] overlaps main band [%g, %g]",
			tb.Min, tb.Max, mb.Min, mb.Max)
	}
	return nil
}

// Metrics returns the compiled specs in declaration order.
func (c *Catalog) Metrics() []*CompiledMetric {
	return c.metrics
}

// Spec returns the compiled spec for a metric kind.
func (c *Catalog) Spec(kind models.MetricKind) (*CompiledMetric, bool) {
	cm, ok := c.byKind[kind]
	return cm, ok
}

// Default returns the production catalog. It panics only if the
// compiled-in specs are broken, which the package tests rule out.
func Default() *Catalog {
	c, err := NewCatalog(DefaultSpecs())
	if err != nil {
		panic(fmt.Sprintf("metrics: default catalog invalid: %v", err))
	}
	return c
}
