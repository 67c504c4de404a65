package extract

import (
	"math"
	"testing"

	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/models"
)

func TestValidateTwoTier(t *testing.T) {
	v := NewRangeValidator(metrics.Default())

	cases := []struct {
		name       string
		metric     models.MetricKind
		value      float64
		valid      bool
		valueType  ValueType
		confidence float64
	}{
		{"small table cell", models.TotalAssets, 500, true, ValueTableCell, 0.7},
		{"large table cell", models.TotalAssets, 5000, true, ValueTableCell, 0.6},
		{"headline total assets", models.TotalAssets, 800000, true, ValueMain, 1.0},
		{"quarterly net profit", models.NetProfit, 5120, true, ValueMain, 0.7},
		{"gap between bands", models.TotalAssets, 50000, false, "", 0.1},
		{"above main band", models.NetProfit, 50000, false, "", 0.1},
		{"below table band", models.NetProfit, 0.5, false, "", 0.1},
	}

	for _, c := range cases {
		got := v.Validate(c.metric, c.value)
		if got.IsValid != c.valid {
			t.Errorf("%s: expected valid=%v, got %v (%s)", c.name, c.valid, got.IsValid, got.Note)
			continue
		}
		if got.ValueType != c.valueType {
			t.Errorf("%s: expected value type %q, got %q", c.name, c.valueType, got.ValueType)
		}
		if math.Abs(got.Confidence-c.confidence) > 1e-9 {
			t.Errorf("%s: expected confidence %.2f, got %.2f", c.name, c.confidence, got.Confidence)
		}
	}
}

func TestValidateMidpointConfidence(t *testing.T) {
	v := NewRangeValidator(metrics.Default())

	// Main band for net profit is [1000, 20000], midpoint 10500.
	mid := v.Validate(models.NetProfit, 10500)
	if !mid.IsValid || mid.Confidence != 1.0 {
		t.Errorf("Midpoint value should score 1.0, got %.2f", mid.Confidence)
	}

	// Confidence decays linearly with distance from the midpoint but
	// never below the base.
	edge := v.Validate(models.NetProfit, 19999)
	if !edge.IsValid || edge.Confidence != 0.7 {
		t.Errorf("Band-edge value should clamp to 0.7, got %.2f", edge.Confidence)
	}

	near := v.Validate(models.NetProfit, 12000)
	want := math.Round((1-math.Abs(12000-10500)/10500)*100) / 100
	if math.Abs(near.Confidence-want) > 1e-9 {
		t.Errorf("Expected confidence %.2f near midpoint, got %.2f", want, near.Confidence)
	}
}

func TestValidateSharedBandEdge(t *testing.T) {
	v := NewRangeValidator(metrics.Default())

	// Net profit bands share the 1000 edge. The table band is checked
	// first, so the edge classifies as a table cell.
	got := v.Validate(models.NetProfit, 1000)
	if !got.IsValid || got.ValueType != ValueTableCell {
		t.Fatalf("Expected table_cell at shared edge, got %+v", got)
	}
	if got.Confidence != 0.7 {
		t.Errorf("Expected confidence 0.7 at shared edge, got %.2f", got.Confidence)
	}
}

func TestValidateUnmodeledMetric(t *testing.T) {
	catalog, err := metrics.NewCatalog([]metrics.MetricSpec{
		{Metric: "cost_income_ratio", Patterns: []string{`ratio\s+(\d+)`}},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	v := NewRangeValidator(catalog)

	got := v.Validate("cost_income_ratio", 123456)
	if !got.IsValid || got.Confidence != 0.7 {
		t.Errorf("Unmodeled metric should accept at 0.7, got %+v", got)
	}
	if got.ValueType != "" {
		t.Errorf("Unmodeled metric should carry no value type, got %q", got.ValueType)
	}
}

func TestValidateRejectionNote(t *testing.T) {
	v := NewRangeValidator(metrics.Default())
	got := v.Validate(models.NetProfit, 50000)
	if got.IsValid {
		t.Fatal("Expected rejection for out-of-band value")
	}
	if got.Note == "" {
		t.Error("Rejection should explain which bands the value missed")
	}
}
