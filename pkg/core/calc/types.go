// Package calc provides the deterministic financial calculations of the
// query engine: percentage change, banking ratios, and multi-period
// trend statistics. Every function is pure: inputs are never mutated
// and each call returns a fresh tagged result, so concurrent queries
// need no coordination.
package calc

import (
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// CalculationType tags a result for downstream dispatch. Synthesis and
// review switch on the tag, never on the Go type.
type CalculationType string

const (
	CalcPercentageChange  CalculationType = "percentage_change"
	CalcROE               CalculationType = "roe"
	CalcLoanToDeposit     CalculationType = "loan_to_deposit_ratio"
	CalcNetInterestMargin CalculationType = "net_interest_margin"
	CalcTrendAnalysis     CalculationType = "trend_analysis"
)

// Result is implemented by every calculation output.
type Result interface {
	CalculationType() CalculationType
}

// ChangeResult reports the movement between two values of one metric.
type ChangeResult struct {
	Type       CalculationType `json:"calculation_type"`
	OldValue   float64         `json:"old_value"`
	NewValue   float64         `json:"new_value"`
	Absolute   float64         `json:"absolute_change"`
	Percentage float64         `json:"percentage_change"`
}

func (r ChangeResult) CalculationType() CalculationType { return r.Type }

// RatioResult reports one banking ratio as a percentage. Numerator and
// denominator are retained so reviewers can re-derive the figure.
type RatioResult struct {
	Type        CalculationType `json:"calculation_type"`
	Numerator   float64         `json:"numerator"`
	Denominator float64         `json:"denominator"`
	Percentage  float64         `json:"percentage"`
}

func (r RatioResult) CalculationType() CalculationType { return r.Type }

// TrendResult reports multi-period statistics for one metric. Periods
// and Values are index-aligned and owned by the result; GrowthRates[i]
// is the step rate from Values[i] to Values[i+1]. AverageGrowth is the
// arithmetic mean of the step rates, a descriptive figure rather than
// a compound annual rate.
type TrendResult struct {
	Type          CalculationType   `json:"calculation_type"`
	Metric        models.MetricKind `json:"metric"`
	Periods       []temporal.Period `json:"periods"`
	Values        []float64         `json:"values"`
	Mean          float64           `json:"mean"`
	StdDev        float64           `json:"std_dev"`
	MinValue      float64           `json:"min_value"`
	MinPeriod     temporal.Period   `json:"min_period"`
	MaxValue      float64           `json:"max_value"`
	MaxPeriod     temporal.Period   `json:"max_period"`
	GrowthRates   []float64         `json:"growth_rates"`
	AverageGrowth float64           `json:"average_growth"`
}

func (r TrendResult) CalculationType() CalculationType { return r.Type }
