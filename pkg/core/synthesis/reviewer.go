package synthesis

import (
	"fmt"
	"math"
	"strings"

	"agentic_finqa/pkg/core/calc"
	"agentic_finqa/pkg/models"
)

// ReviewCheck records one review rule outcome.
type ReviewCheck struct {
	Name    string `json:"check"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Review is the quality gate over a synthesized answer. Errors block
// approval; warnings ride along for diagnostics.
type Review struct {
	Approved   bool          `json:"approved"`
	Errors     []string      `json:"errors,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Confidence float64       `json:"confidence"`
	Checks     []ReviewCheck `json:"checks"`
}

// Reviewer applies plausibility bounds to calculation results and
// structural checks to the answer text. It is deliberately deterministic:
// an answer is never approved by a model.
type Reviewer struct{}

func NewReviewer() *Reviewer {
	return &Reviewer{}
}

// Plausibility bounds for reported figures. ROE can be negative in a
// loss-making period; LDR and percentage moves beyond these ranges mean
// the inputs were garbage, not the bank.
const (
	roeMin, roeMax       = -100.0, 100.0
	ldrMin, ldrMax       = 0.0, 200.0
	changeMin, changeMax = -1000.0, 1000.0
)

var financialTerms = []string{"profit", "growth", "ratio", "quarter", "year", "percent"}

// Review checks the answer against the evidence behind it.
func (r *Reviewer) Review(answer string, points []models.FinancialDataPoint, calculations []calc.Result) Review {
	review := Review{Approved: true}

	r.checkDataPoints(&review, points)
	r.checkCalculations(&review, calculations)
	r.checkAnswer(&review, answer, calculations)

	review.Confidence = reviewConfidence(review.Checks)
	review.Approved = len(review.Errors) == 0
	return review
}

func (r *Reviewer) checkDataPoints(review *Review, points []models.FinancialDataPoint) {
	if len(points) == 0 {
		review.Errors = append(review.Errors, "No data points extracted")
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    "data_points_exist",
			Passed:  false,
			Message: "No financial data points were extracted",
		})
		return
	}

	lowConfidence := 0
	for _, dp := range points {
		if dp.Confidence < 0.5 {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		review.Warnings = append(review.Warnings,
			fmt.Sprintf("%d data points have low confidence", lowConfidence))
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    "data_confidence",
			Passed:  true,
			Message: fmt.Sprintf("Found %d low confidence data points", lowConfidence),
		})
	}

	review.Checks = append(review.Checks, ReviewCheck{
		Name:    "data_points_exist",
		Passed:  true,
		Message: fmt.Sprintf("Validated %d data points", len(points)),
	})
}

func (r *Reviewer) checkCalculations(review *Review, calculations []calc.Result) {
	if len(calculations) == 0 {
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    "calculations_exist",
			Passed:  true,
			Message: "No calculations to validate",
		})
		return
	}

	for i, result := range calculations {
		passed := true
		switch result.CalculationType() {
		case calc.CalcPercentageChange:
			if c, ok := result.(calc.ChangeResult); ok && (c.Percentage < changeMin || c.Percentage > changeMax) {
				passed = false
				review.Errors = append(review.Errors,
					fmt.Sprintf("Invalid percentage change: %g", c.Percentage))
			}
		case calc.CalcROE:
			if c, ok := result.(calc.RatioResult); ok && (c.Percentage < roeMin || c.Percentage > roeMax) {
				passed = false
				review.Errors = append(review.Errors,
					fmt.Sprintf("Invalid ROE: %g", c.Percentage))
			}
		case calc.CalcLoanToDeposit:
			if c, ok := result.(calc.RatioResult); ok && (c.Percentage < ldrMin || c.Percentage > ldrMax) {
				passed = false
				review.Errors = append(review.Errors,
					fmt.Sprintf("Invalid loan-to-deposit ratio: %g", c.Percentage))
			}
		}
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    fmt.Sprintf("calculation_%d", i+1),
			Passed:  passed,
			Message: fmt.Sprintf("Calculation %s validated", result.CalculationType()),
		})
	}
}

func (r *Reviewer) checkAnswer(review *Review, answer string, calculations []calc.Result) {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) < 50 {
		review.Warnings = append(review.Warnings, "Answer appears very brief")
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    "answer_length",
			Passed:  false,
			Message: "Answer is very short",
		})
	} else {
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    "answer_length",
			Passed:  true,
			Message: "Answer has sufficient length",
		})
	}

	lower := strings.ToLower(answer)
	found := 0
	for _, term := range financialTerms {
		if strings.Contains(lower, term) {
			found++
		}
	}
	if found >= 2 {
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    "financial_terminology",
			Passed:  true,
			Message: fmt.Sprintf("Answer contains %d relevant financial terms", found),
		})
	} else {
		review.Warnings = append(review.Warnings, "Answer may lack financial context")
		review.Checks = append(review.Checks, ReviewCheck{
			Name:    "financial_terminology",
			Passed:  false,
			Message: "Limited financial terminology in answer",
		})
	}

	if len(calculations) > 0 {
		missing := missingFigures(answer, calculations)
		if len(missing) == 0 {
			review.Checks = append(review.Checks, ReviewCheck{
				Name:    "answer_references_results",
				Passed:  true,
				Message: "Answer references the computed figures",
			})
		} else {
			review.Warnings = append(review.Warnings,
				fmt.Sprintf("Answer does not mention: %s", strings.Join(missing, ", ")))
			review.Checks = append(review.Checks, ReviewCheck{
				Name:    "answer_references_results",
				Passed:  false,
				Message: "Computed figures missing from answer",
			})
		}
	}
}

// missingFigures lists headline results the answer never states. The
// match is on the figure rounded to one decimal, the precision every
// renderer uses.
func missingFigures(answer string, calculations []calc.Result) []string {
	var missing []string
	for _, result := range calculations {
		var figure float64
		switch c := result.(type) {
		case calc.ChangeResult:
			figure = c.Percentage
		case calc.RatioResult:
			figure = c.Percentage
		default:
			continue
		}
		rendered := fmt.Sprintf("%.1f", math.Abs(figure))
		if !strings.Contains(answer, rendered) {
			missing = append(missing, fmt.Sprintf("%s %s%%", result.CalculationType(), rendered))
		}
	}
	return missing
}

// reviewConfidence is the passed-check share, boosted when every data
// check passed, rounded to two decimals.
func reviewConfidence(checks []ReviewCheck) float64 {
	if len(checks) == 0 {
		return 0.5
	}

	passed := 0
	dataChecksPassed := true
	for _, check := range checks {
		if check.Passed {
			passed++
		}
		if strings.Contains(check.Name, "data_points") && !check.Passed {
			dataChecksPassed = false
		}
	}

	score := float64(passed) / float64(len(checks))
	if dataChecksPassed {
		score = math.Min(1.0, score*1.2)
	}
	return math.Round(score*100) / 100
}
