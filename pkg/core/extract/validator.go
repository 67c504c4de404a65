package extract

import (
	"fmt"
	"math"

	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/models"
)

// Confidence levels of the two-tier validation model. Table cells cap
// below main-statement certainty because small figures are presumptively
// sub-components of a larger total.
const (
	smallCellConfidence = 0.7
	largeCellConfidence = 0.6
	baseMainConfidence  = 0.7
	unmodeledConfidence = 0.7
	rejectConfidence    = 0.1

	smallCellLimit = 1000.0
)

// ValueType labels which plausibility band accepted a value.
type ValueType string

const (
	ValueTableCell ValueType = "table_cell"
	ValueMain      ValueType = "main_financial"
)

// ValidationResult is the outcome of one range check. Produced fresh per
// candidate, never mutated.
type ValidationResult struct {
	IsValid    bool      `json:"is_valid"`
	Confidence float64   `json:"confidence"`
	ValueType  ValueType `json:"value_type,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// RangeValidator classifies normalized values against the per-metric
// table-cell and main-financial bands. A single plausibility range
// cannot distinguish a component figure inside a comparison table from
// the bank's actual reported total; collapsing the two causes either
// false rejections of legitimate small table values or false acceptance
// of implausible headline figures.
type RangeValidator struct {
	catalog *metrics.Catalog
}

// NewRangeValidator builds a validator over an injected catalog.
func NewRangeValidator(catalog *metrics.Catalog) *RangeValidator {
	return &RangeValidator{catalog: catalog}
}

// Validate classifies value (in millions) for the metric. The table band
// is checked before the main band, so a value on a shared band edge
// classifies as a table cell deterministically. Main-band confidence
// rises toward the band's midpoint: extreme-but-technically-in-range
// values are more often mis-parsed. Metrics without bands are accepted
// unconditionally at base confidence so unmodeled metrics degrade
// gracefully instead of being dropped.
func (v *RangeValidator) Validate(kind models.MetricKind, value float64) ValidationResult {
	cm, ok := v.catalog.Spec(kind)
	if !ok || (cm.TableBand == nil && cm.MainBand == nil) {
		return ValidationResult{IsValid: true, Confidence: unmodeledConfidence}
	}

	if cm.TableBand != nil && cm.TableBand.Contains(value) {
		confidence := largeCellConfidence
		if value >= 1 && value <= smallCellLimit {
			confidence = smallCellConfidence
		}
		return ValidationResult{
			IsValid:    true,
			Confidence: confidence,
			ValueType:  ValueTableCell,
			Note:       fmt.Sprintf("table cell value: %.0f million", value),
		}
	}

	if cm.MainBand != nil && cm.MainBand.Contains(value) {
		midpoint := cm.MainBand.Midpoint()
		deviation := math.Abs(value-midpoint) / midpoint
		confidence := math.Max(baseMainConfidence, 1-deviation)
		return ValidationResult{
			IsValid:    true,
			Confidence: round2(confidence),
			ValueType:  ValueMain,
		}
	}

	return ValidationResult{
		IsValid:    false,
		Confidence: rejectConfidence,
		Note: fmt.Sprintf("value %.0f million outside table band %s and main band %s for %s",
			value, bandString(cm.TableBand), bandString(cm.MainBand), kind),
	}
}

func bandString(b *metrics.Band) string {
	if b == nil {
		return "(none)"
	}
	return fmt.Sprintf("[%g, %g]", b.Min, b.Max)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
