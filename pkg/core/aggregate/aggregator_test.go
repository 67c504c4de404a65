package aggregate

import (
	"math"
	"testing"

	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

func dp(metric models.MetricKind, value float64, period temporal.Period, confidence float64) models.FinancialDataPoint {
	return models.FinancialDataPoint{
		Metric:     metric,
		Value:      value,
		Period:     period,
		Confidence: confidence,
	}
}

func TestGroupKeepsHighestConfidence(t *testing.T) {
	a := Group([]models.FinancialDataPoint{
		dp(models.NetProfit, 4800, "2022_Q1", 0.6),
		dp(models.NetProfit, 5120, "2022_Q1", 0.8),
		dp(models.NetProfit, 4900, "2022_Q1", 0.7),
	})

	point, ok := a.Point("2022_Q1", models.NetProfit)
	if !ok {
		t.Fatal("Expected retained point for (2022_Q1, net_profit)")
	}
	if math.Abs(point.Value-5120) > 1e-9 || point.Confidence != 0.8 {
		t.Errorf("Expected 5120 at 0.8, got %g at %.2f", point.Value, point.Confidence)
	}
	if a.Len() != 1 {
		t.Errorf("Expected 1 retained pair, got %d", a.Len())
	}
}

func TestAddTieBreaksToLatest(t *testing.T) {
	a := New()
	a.Add(dp(models.TotalAssets, 800000, "2022_Annual", 0.9))
	a.Add(dp(models.TotalAssets, 821000, "2022_Annual", 0.9))

	value, ok := a.Value("2022_Annual", models.TotalAssets)
	if !ok || math.Abs(value-821000) > 1e-9 {
		t.Errorf("Equal confidence should keep the later point, got %g", value)
	}
}

func TestPeriodsSortedChronologically(t *testing.T) {
	a := Group([]models.FinancialDataPoint{
		dp(models.NetProfit, 3500, "2023_Q1", 0.8),
		dp(models.NetProfit, 3100, "2022_Q3", 0.8),
		dp(models.NetProfit, 13400, "2022_Annual", 0.8),
		dp(models.NetProfit, 2900, "2022_Q2", 0.8),
	})

	got := a.Periods()
	want := []temporal.Period{"2022_Q2", "2022_Q3", "2022_Annual", "2023_Q1"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d periods, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Period %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSeriesAlignedAndOrdered(t *testing.T) {
	a := Group([]models.FinancialDataPoint{
		dp(models.NetProfit, 3500, "2022_Q3", 0.8),
		dp(models.NetProfit, 3100, "2022_Q1", 0.8),
		dp(models.NetProfit, 3300, "2022_Q2", 0.8),
		dp(models.TotalAssets, 821000, "2022_Q2", 0.9),
	})

	periods, values := a.Series(models.NetProfit)
	if len(periods) != 3 || len(values) != 3 {
		t.Fatalf("Expected 3-point series, got %d periods %d values", len(periods), len(values))
	}
	wantPeriods := []temporal.Period{"2022_Q1", "2022_Q2", "2022_Q3"}
	wantValues := []float64{3100, 3300, 3500}
	for i := range wantPeriods {
		if periods[i] != wantPeriods[i] {
			t.Errorf("Series period %d: expected %s, got %s", i, wantPeriods[i], periods[i])
		}
		if math.Abs(values[i]-wantValues[i]) > 1e-9 {
			t.Errorf("Series value %d: expected %g, got %g", i, wantValues[i], values[i])
		}
	}

	absent, absentValues := a.Series(models.TotalDeposits)
	if len(absent) != 0 || len(absentValues) != 0 {
		t.Errorf("Expected empty series for absent metric, got %v %v", absent, absentValues)
	}
}

func TestMetricsReturnsCopy(t *testing.T) {
	a := Group([]models.FinancialDataPoint{
		dp(models.NetProfit, 5120, "2022_Q1", 0.8),
	})

	view := a.Metrics("2022_Q1")
	view[models.NetProfit] = dp(models.NetProfit, 0, "2022_Q1", 0)

	value, ok := a.Value("2022_Q1", models.NetProfit)
	if !ok || math.Abs(value-5120) > 1e-9 {
		t.Errorf("Mutating the returned map must not affect the aggregation, got %g", value)
	}
	if a.Metrics("2019_Q4") != nil {
		t.Error("Expected nil map for unknown period")
	}
}

func TestPointsDeterministicOrder(t *testing.T) {
	a := Group([]models.FinancialDataPoint{
		dp(models.TotalAssets, 821000, "2022_Q2", 0.9),
		dp(models.NetProfit, 3300, "2022_Q2", 0.8),
		dp(models.NetProfit, 3100, "2022_Q1", 0.8),
	})

	points := a.Points()
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}
	if points[0].Period != "2022_Q1" {
		t.Errorf("Expected 2022_Q1 first, got %s", points[0].Period)
	}
	if points[1].Metric != models.NetProfit || points[2].Metric != models.TotalAssets {
		t.Errorf("Expected metric order net_profit, total_assets within period, got %s, %s",
			points[1].Metric, points[2].Metric)
	}
}
