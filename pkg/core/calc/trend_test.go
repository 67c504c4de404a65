package calc

import (
	"errors"
	"math"
	"sync"
	"testing"

	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

func TestTrendAnalysis(t *testing.T) {
	values := []float64{2500, 2800, 3200, 2900, 3500, 5120}
	periods := []temporal.Period{"2021_Q2", "2021_Q3", "2021_Q4", "2022_Q1", "2022_Q2", "2022_Q3"}

	got, err := TrendAnalysis(models.NetProfit, values, periods)
	if err != nil {
		t.Fatalf("TrendAnalysis failed: %v", err)
	}
	if got.Type != CalcTrendAnalysis {
		t.Errorf("Expected tag trend_analysis, got %s", got.Type)
	}
	if math.Abs(got.Mean-3336.6666666667) > 1e-6 {
		t.Errorf("Expected mean 3336.67, got %.4f", got.Mean)
	}
	if got.MinValue != 2500 || got.MinPeriod != "2021_Q2" {
		t.Errorf("Expected min 2500 at 2021_Q2, got %g at %s", got.MinValue, got.MinPeriod)
	}
	if got.MaxValue != 5120 || got.MaxPeriod != "2022_Q3" {
		t.Errorf("Expected max 5120 at 2022_Q3, got %g at %s", got.MaxValue, got.MaxPeriod)
	}
	if len(got.GrowthRates) != 5 {
		t.Fatalf("Expected 5 growth rates, got %d", len(got.GrowthRates))
	}
	if math.Abs(got.GrowthRates[0]-12.0) > 1e-9 {
		t.Errorf("Expected first step rate 12%%, got %.4f", got.GrowthRates[0])
	}
	if math.Abs(got.AverageGrowth-16.7772167488) > 1e-6 {
		t.Errorf("Expected average growth 16.78%%, got %.6f", got.AverageGrowth)
	}
}

func TestTrendExtremaFirstOccurrence(t *testing.T) {
	got, err := TrendAnalysis(models.NetProfit,
		[]float64{100, 200, 150},
		[]temporal.Period{"2022_Q1", "2022_Q2", "2022_Q3"})
	if err != nil {
		t.Fatalf("TrendAnalysis failed: %v", err)
	}
	if got.MaxPeriod != "2022_Q2" || got.MinPeriod != "2022_Q1" {
		t.Errorf("Expected max at 2022_Q2, min at 2022_Q1, got %s / %s", got.MaxPeriod, got.MinPeriod)
	}
	// 100 -> 200 is +100%, 200 -> 150 is -25%; arithmetic mean 37.5%.
	if math.Abs(got.AverageGrowth-37.5) > 1e-9 {
		t.Errorf("Expected average growth 37.5%%, got %g", got.AverageGrowth)
	}

	tied, err := TrendAnalysis(models.TotalAssets,
		[]float64{100, 50, 50, 100},
		[]temporal.Period{"2022_Q1", "2022_Q2", "2022_Q3", "2022_Q4"})
	if err != nil {
		t.Fatalf("TrendAnalysis failed: %v", err)
	}
	if tied.MinPeriod != "2022_Q2" {
		t.Errorf("Tied minimum should report first occurrence, got %s", tied.MinPeriod)
	}
	if tied.MaxPeriod != "2022_Q1" {
		t.Errorf("Tied maximum should report first occurrence, got %s", tied.MaxPeriod)
	}
}

func TestTrendZeroPriorStep(t *testing.T) {
	got, err := TrendAnalysis(models.NetProfit,
		[]float64{0, 100, 200},
		[]temporal.Period{"2022_Q1", "2022_Q2", "2022_Q3"})
	if err != nil {
		t.Fatalf("TrendAnalysis failed: %v", err)
	}
	if got.GrowthRates[0] != 0 {
		t.Errorf("Zero prior should yield 0%% step, got %g", got.GrowthRates[0])
	}
	if math.Abs(got.GrowthRates[1]-100) > 1e-9 {
		t.Errorf("Later steps unaffected, expected 100%%, got %g", got.GrowthRates[1])
	}
}

func TestTrendPopulationStdDev(t *testing.T) {
	got, err := TrendAnalysis(models.NetProfit,
		[]float64{100, 200, 150},
		[]temporal.Period{"2022_Q1", "2022_Q2", "2022_Q3"})
	if err != nil {
		t.Fatalf("TrendAnalysis failed: %v", err)
	}
	// Population variance of {100, 200, 150} is 5000/3.
	want := math.Sqrt(5000.0 / 3.0)
	if math.Abs(got.StdDev-want) > 1e-9 {
		t.Errorf("Expected population std dev %.6f, got %.6f", want, got.StdDev)
	}
}

func TestTrendErrors(t *testing.T) {
	_, err := TrendAnalysis(models.NetProfit,
		[]float64{100},
		[]temporal.Period{"2022_Q1"})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData for single value, got %v", err)
	}

	_, err = TrendAnalysis(models.NetProfit,
		[]float64{100, 200},
		[]temporal.Period{"2022_Q1"})
	if !errors.Is(err, ErrSeriesMismatch) {
		t.Errorf("Expected ErrSeriesMismatch for unequal lengths, got %v", err)
	}
}

func TestTrendOwnsCopies(t *testing.T) {
	values := []float64{100, 200}
	periods := []temporal.Period{"2022_Q1", "2022_Q2"}
	got, err := TrendAnalysis(models.NetProfit, values, periods)
	if err != nil {
		t.Fatalf("TrendAnalysis failed: %v", err)
	}

	values[0] = -1
	periods[0] = "1999_Q1"
	if got.Values[0] != 100 || got.Periods[0] != "2022_Q1" {
		t.Error("Result must not alias caller slices")
	}
}

func TestHistoryConcurrentAppend(t *testing.T) {
	h := NewHistory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				r, err := PercentageChange(100, 150)
				if err != nil {
					t.Errorf("PercentageChange failed: %v", err)
					return
				}
				h.Append(r)
			}
		}()
	}
	wg.Wait()

	if h.Len() != 200 {
		t.Errorf("Expected 200 entries, got %d", h.Len())
	}
	snap := h.Snapshot()
	if len(snap) != 200 {
		t.Errorf("Expected snapshot of 200 entries, got %d", len(snap))
	}
	if snap[0].Result.CalculationType() != CalcPercentageChange {
		t.Errorf("Expected percentage_change entry, got %s", snap[0].Result.CalculationType())
	}
}
