// Package extract turns raw chunk content into validated financial data
// points. It chains the pattern matcher, the unit normalizer, the
// two-tier range validator, and period tagging, keeping every failure
// local to the candidate that caused it.
package extract

import (
	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/models"
)

// Candidate is one pattern hit: the captured numeric literal plus the
// full matched text, which carries the unit words needed for scale
// detection. Candidates are ephemeral and discarded after normalization.
type Candidate struct {
	Metric  models.MetricKind
	Literal string
	Context string
	Start   int
	End     int
}

// Matcher applies the catalog's ordered pattern lists to chunk content.
type Matcher struct {
	catalog *metrics.Catalog
}

// NewMatcher builds a matcher over an injected catalog.
func NewMatcher(catalog *metrics.Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Match returns every candidate for every metric in the catalog.
// All patterns are evaluated, not just the first to hit: filings repeat
// the same figure in statement lines, table captions, and narrative
// restatements, and discarding the later phrasings would lose evidence.
// A later pattern's hit is dropped only when its capture covers exactly
// the span an earlier pattern already produced for the same metric; the
// earlier, more specific pattern's context wins. Conflicting values at
// distinct offsets all survive for the validator and aggregator to
// adjudicate.
func (m *Matcher) Match(content string) []Candidate {
	var out []Candidate
	for _, cm := range m.catalog.Metrics() {
		out = append(out, matchMetric(cm, content)...)
	}
	return out
}

// MatchMetric returns the candidates for a single metric kind.
func (m *Matcher) MatchMetric(kind models.MetricKind, content string) []Candidate {
	cm, ok := m.catalog.Spec(kind)
	if !ok {
		return nil
	}
	return matchMetric(cm, content)
}

func matchMetric(cm *metrics.CompiledMetric, content string) []Candidate {
	var out []Candidate
	seen := make(map[[2]int]bool)
	for _, re := range cm.Patterns {
		for _, idx := range re.FindAllStringSubmatchIndex(content, -1) {
			if len(idx) < 4 || idx[2] < 0 || idx[3] < idx[2] {
				continue
			}
			span := [2]int{idx[2], idx[3]}
			if seen[span] {
				continue
			}
			seen[span] = true
			out = append(out, Candidate{
				Metric:  cm.Metric,
				Literal: content[idx[2]:idx[3]],
				Context: content[idx[0]:idx[1]],
				Start:   idx[2],
				End:     idx[3],
			})
		}
	}
	return out
}
