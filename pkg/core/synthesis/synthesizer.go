package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"agentic_finqa/pkg/core/agent"
	"agentic_finqa/pkg/core/calc"
	"agentic_finqa/pkg/core/utils"
	"agentic_finqa/pkg/models"
)

// Role is the agent-config key that selects the synthesis provider.
const Role = "synthesis"

const systemPrompt = "You are an expert financial analyst specializing in bank financial statements."

// Synthesizer writes the final answer. With no usable provider it falls
// back to the deterministic template, so Synthesize never fails.
type Synthesizer struct {
	mgr *agent.Manager
	log zerolog.Logger
}

func NewSynthesizer(mgr *agent.Manager, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		mgr: mgr,
		log: log.With().Str("component", "synthesizer").Logger(),
	}
}

// Synthesize produces a markdown answer for the given evidence.
func (s *Synthesizer) Synthesize(ctx context.Context, input Input) string {
	if s.mgr != nil && s.mgr.GetProvider(Role) != nil {
		answer, err := s.mgr.ExecutePrompt(ctx, Role, buildPrompt(input), systemPrompt, nil)
		if err != nil {
			s.log.Warn().Err(err).Msg("provider synthesis failed, rendering template")
		} else if cleaned := utils.CleanMarkdown(answer); strings.TrimSpace(cleaned) != "" {
			return cleaned
		}
	}
	return RenderTemplate(input)
}

func buildPrompt(input Input) string {
	return fmt.Sprintf(`You are a senior financial analyst at First Abu Dhabi Bank (FAB).
Analyze the provided financial data and answer the user's query comprehensively.

USER QUERY: %s

FINANCIAL DATA AND ANALYSIS:
%s

REQUIREMENTS:
1. Provide a clear, structured answer focusing on key insights
2. Reference specific numbers and calculations
3. Explain the business implications
4. Highlight trends and patterns
5. Be precise and professional
6. Cite the specific periods and metrics used

ANSWER:`, input.Query, BuildContext(input))
}

// RenderTemplate is the deterministic fallback answer. Figures come
// straight from the inputs, so every number in the text is reviewable.
func RenderTemplate(input Input) string {
	var sections []string

	if len(input.Calculations) > 0 {
		sections = append(sections, renderCalculations(input.Calculations))
	}
	if len(input.Points) > 0 {
		sections = append(sections, renderMetrics(input.Points))
	}
	if input.Comparison != nil {
		sections = append(sections, renderComparison(input.Comparison))
	}
	sections = append(sections, renderSources(input.Points))

	return strings.Join(sections, "\n\n")
}

func renderCalculations(results []calc.Result) string {
	var b strings.Builder
	b.WriteString("## Financial Analysis\n")
	for _, result := range results {
		b.WriteString("\n")
		switch result.CalculationType() {
		case calc.CalcPercentageChange:
			if r, ok := result.(calc.ChangeResult); ok {
				b.WriteString("**Percentage Change Analysis:**\n")
				fmt.Fprintf(&b, "- Previous Value: AED %s million\n", formatAmount(r.OldValue))
				fmt.Fprintf(&b, "- Current Value: AED %s million\n", formatAmount(r.NewValue))
				fmt.Fprintf(&b, "- Absolute Change: AED %s million\n", formatAmount(r.Absolute))
				fmt.Fprintf(&b, "- Percentage Change: %+.1f%%\n", r.Percentage)
			}
		case calc.CalcROE, calc.CalcLoanToDeposit, calc.CalcNetInterestMargin:
			if r, ok := result.(calc.RatioResult); ok {
				fmt.Fprintf(&b, "**%s:** %.1f%%%s\n", ratioTitle(r.Type), r.Percentage, ratioNote(r.Type))
			}
		case calc.CalcTrendAnalysis:
			if r, ok := result.(calc.TrendResult); ok {
				fmt.Fprintf(&b, "**Trend Analysis for %s:**\n", metricTitle(r.Metric))
				fmt.Fprintf(&b, "- Average Value: AED %s million\n", formatAmount(r.Mean))
				fmt.Fprintf(&b, "- Highest: AED %s million (%s)\n", formatAmount(r.MaxValue), r.MaxPeriod)
				fmt.Fprintf(&b, "- Lowest: AED %s million (%s)\n", formatAmount(r.MinValue), r.MinPeriod)
				fmt.Fprintf(&b, "- Average Growth Rate: %+.1f%% per period\n", r.AverageGrowth)
			}
		default:
			encoded, _ := json.Marshal(result)
			fmt.Fprintf(&b, "**Calculation Result:** %s\n", encoded)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMetrics(points []models.FinancialDataPoint) string {
	var b strings.Builder
	b.WriteString("## Key Financial Metrics\n")
	for _, period := range sortedPeriods(points) {
		fmt.Fprintf(&b, "\n**%s:**\n", period)
		for _, dp := range pointsFor(points, period) {
			fmt.Fprintf(&b, "- %s: AED %s million\n", metricTitle(dp.Metric), formatAmount(dp.Value))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderComparison(comparison *TemporalComparison) string {
	var b strings.Builder
	b.WriteString("## Contextual Analysis\n\n")
	fmt.Fprintf(&b, "**Period Analysis:** %s vs %s, %s\n",
		comparison.Relationship.From, comparison.Relationship.To, comparison.Relationship.Description)
	for _, kind := range sortedChangeKinds(comparison.Changes) {
		change := comparison.Changes[kind]
		fmt.Fprintf(&b, "- %s: AED %s million to AED %s million (%+.1f%%)\n",
			metricTitle(kind), formatAmount(change.OldValue), formatAmount(change.NewValue), change.Percentage)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSources(points []models.FinancialDataPoint) string {
	var b strings.Builder
	b.WriteString("## Sources & Methodology\n\n")
	b.WriteString("*Analysis based on FAB's official financial reports and presentations.*\n")

	seen := make(map[string]bool)
	var sources []string
	total := 0.0
	for _, dp := range points {
		total += dp.Confidence
		desc := fmt.Sprintf("%s %d %s", dp.Metadata.DocumentType, dp.Metadata.Year, dp.Metadata.Quarter)
		if !seen[desc] {
			seen[desc] = true
			sources = append(sources, desc)
		}
	}
	if len(sources) > 0 {
		sort.Strings(sources)
		b.WriteString("\n**Data Sources:**\n")
		for _, src := range sources {
			fmt.Fprintf(&b, "- %s\n", src)
		}
	}

	fmt.Fprintf(&b, "\n**Confidence Level:** %s", confidenceLevel(points, total))
	return b.String()
}

func confidenceLevel(points []models.FinancialDataPoint, total float64) string {
	if len(points) == 0 {
		return "Low (no extracted data)"
	}
	avg := total / float64(len(points))
	switch {
	case avg >= 0.8:
		return "High (based on official financial reporting)"
	case avg >= 0.6:
		return "Medium (based on official financial reporting)"
	default:
		return "Low (extraction confidence limited)"
	}
}

func ratioTitle(kind calc.CalculationType) string {
	switch kind {
	case calc.CalcROE:
		return "Return on Equity (ROE)"
	case calc.CalcLoanToDeposit:
		return "Loan-to-Deposit Ratio"
	case calc.CalcNetInterestMargin:
		return "Net Interest Margin"
	}
	return string(kind)
}

// ratioNote qualifies figures computed on stand-in denominators.
func ratioNote(kind calc.CalculationType) string {
	if kind == calc.CalcNetInterestMargin {
		return " (net interest income over total assets)"
	}
	return ""
}

var titleCaser = cases.Title(language.English)

func metricTitle(kind models.MetricKind) string {
	return titleCaser.String(strings.ReplaceAll(string(kind), "_", " "))
}
