package pipeline

import (
	"strings"

	"agentic_finqa/pkg/models"
)

// Classification rules in priority order; the first rule with any
// keyword hit wins. Calculation outranks trend so "calculate the ROE
// trend" plans calculations, and risk outranks multi-hop so "what
// factors drive risk" routes to the risk path.
var queryRules = []struct {
	kind     models.QueryType
	keywords []string
}{
	{models.QueryCalculation, []string{"calculate", "ratio", "percentage", "growth rate"}},
	{models.QueryTrendAnalysis, []string{"trend", "over time", "last", "previous"}},
	{models.QueryTemporalComparison, []string{"compare", "vs", "versus", "difference"}},
	{models.QueryRiskAnalysis, []string{"risk", "factors", "challenges"}},
	{models.QueryMultiHop, []string{"how", "why", "explain"}},
}

// Classify maps a question to the query type that routes it through the
// pipeline. Matching is case-insensitive substring search; a question
// with no keyword is a single-fact lookup.
func Classify(query string) models.QueryType {
	lower := strings.ToLower(query)
	for _, rule := range queryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.kind
			}
		}
	}
	return models.QuerySingleFact
}
