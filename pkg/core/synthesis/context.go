// Package synthesis turns extracted facts and calculation results into a
// final answer. An LLM provider writes the prose when one is configured;
// a deterministic template renderer covers the no-provider path and any
// provider failure, so the pipeline always produces an answer. The
// reviewer then checks the answer against the numbers it claims to
// report.
package synthesis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"agentic_finqa/pkg/core/calc"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// TemporalComparison is the pipeline's period-versus-period analysis:
// the relationship between two referenced periods and the change in each
// shared metric.
type TemporalComparison struct {
	Relationship temporal.PeriodRelationship             `json:"relationship"`
	Changes      map[models.MetricKind]calc.ChangeResult `json:"metric_changes,omitempty"`
}

// Input carries everything the synthesizer may reference.
type Input struct {
	Query        string
	QueryType    models.QueryType
	Points       []models.FinancialDataPoint
	Calculations []calc.Result
	Comparison   *TemporalComparison
}

var amounts = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return amounts.Sprintf("%.0f", v)
}

// BuildContext renders the structured evidence block handed to the
// provider. Sections appear only when they have content, so the model
// never sees empty headers to hallucinate into.
func BuildContext(input Input) string {
	var parts []string

	if len(input.Points) > 0 {
		parts = append(parts, "EXTRACTED FINANCIAL DATA:")
		for _, period := range sortedPeriods(input.Points) {
			parts = append(parts, fmt.Sprintf("Period: %s", period))
			for _, dp := range pointsFor(input.Points, period) {
				parts = append(parts, fmt.Sprintf("  - %s: %s million AED (confidence %.2f)",
					dp.Metric, formatAmount(dp.Value), dp.Confidence))
			}
		}
	}

	if len(input.Calculations) > 0 {
		parts = append(parts, "\nCALCULATIONS PERFORMED:")
		for _, result := range input.Calculations {
			encoded, err := json.Marshal(result)
			if err != nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("  - %s: %s", result.CalculationType(), encoded))
		}
	}

	if input.Comparison != nil {
		parts = append(parts, "\nANALYSIS RESULTS:")
		parts = append(parts, fmt.Sprintf("  - period_relationship: %s vs %s (%s)",
			input.Comparison.Relationship.From,
			input.Comparison.Relationship.To,
			input.Comparison.Relationship.Description))
		for _, kind := range sortedChangeKinds(input.Comparison.Changes) {
			change := input.Comparison.Changes[kind]
			parts = append(parts, fmt.Sprintf("  - %s: %s -> %s million AED (%+.1f%%)",
				kind, formatAmount(change.OldValue), formatAmount(change.NewValue), change.Percentage))
		}
	}

	return strings.Join(parts, "\n")
}

func sortedPeriods(points []models.FinancialDataPoint) []temporal.Period {
	seen := make(map[temporal.Period]bool)
	var periods []temporal.Period
	for _, dp := range points {
		if !seen[dp.Period] {
			seen[dp.Period] = true
			periods = append(periods, dp.Period)
		}
	}
	temporal.SortPeriods(periods)
	return periods
}

func pointsFor(points []models.FinancialDataPoint, period temporal.Period) []models.FinancialDataPoint {
	var out []models.FinancialDataPoint
	for _, dp := range points {
		if dp.Period == period {
			out = append(out, dp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}

func sortedChangeKinds(changes map[models.MetricKind]calc.ChangeResult) []models.MetricKind {
	kinds := make([]models.MetricKind, 0, len(changes))
	for k := range changes {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
