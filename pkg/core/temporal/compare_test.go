package temporal

import (
	"errors"
	"testing"
)

func TestComparePeriodsAcrossYears(t *testing.T) {
	rel, err := ComparePeriods("2022_Q1", "2023_Q3")
	if err != nil {
		t.Fatalf("ComparePeriods failed: %v", err)
	}
	if rel.YearDifference != 1 {
		t.Errorf("Expected year difference 1, got %d", rel.YearDifference)
	}
	if rel.QuarterDifference != 2 {
		t.Errorf("Expected quarter difference 2, got %d", rel.QuarterDifference)
	}
	if !rel.QuarterComparable {
		t.Error("Expected quarterly periods to be quarter-comparable")
	}
	if rel.Description != "1 year(s) and 2 quarter(s) later" {
		t.Errorf("Unexpected description: %q", rel.Description)
	}
}

func TestComparePeriodsSameYear(t *testing.T) {
	rel, err := ComparePeriods("2022_Q1", "2022_Q3")
	if err != nil {
		t.Fatalf("ComparePeriods failed: %v", err)
	}
	if rel.YearDifference != 0 || rel.QuarterDifference != 2 {
		t.Errorf("Expected (0, 2), got (%d, %d)", rel.YearDifference, rel.QuarterDifference)
	}
	if rel.Description != "same year, 2 quarter(s) later" {
		t.Errorf("Unexpected description: %q", rel.Description)
	}
}

func TestComparePeriodsEarlier(t *testing.T) {
	rel, err := ComparePeriods("2023_Q3", "2022_Q1")
	if err != nil {
		t.Fatalf("ComparePeriods failed: %v", err)
	}
	if rel.YearDifference != -1 || rel.QuarterDifference != -2 {
		t.Errorf("Expected (-1, -2), got (%d, %d)", rel.YearDifference, rel.QuarterDifference)
	}
	if rel.Description != "1 year(s) and 2 quarter(s) earlier" {
		t.Errorf("Unexpected description: %q", rel.Description)
	}
}

func TestComparePeriodsAdjacentYearBoundary(t *testing.T) {
	rel, err := ComparePeriods("2022_Q4", "2023_Q1")
	if err != nil {
		t.Fatalf("ComparePeriods failed: %v", err)
	}
	// One quarter apart even though the year differs.
	if rel.Description != "1 quarter(s) later" {
		t.Errorf("Unexpected description: %q", rel.Description)
	}
}

func TestComparePeriodsSame(t *testing.T) {
	rel, err := ComparePeriods("2022_Q2", "2022_Q2")
	if err != nil {
		t.Fatalf("ComparePeriods failed: %v", err)
	}
	if rel.Description != "same period" {
		t.Errorf("Expected 'same period', got %q", rel.Description)
	}
}

func TestCompareAnnualNotQuarterComparable(t *testing.T) {
	rel, err := ComparePeriods("2022_Annual", "2023_Q1")
	if err != nil {
		t.Fatalf("ComparePeriods failed: %v", err)
	}
	if rel.QuarterComparable {
		t.Error("Annual period must not be quarter-comparable")
	}
	if rel.QuarterDifference != 0 {
		t.Errorf("Expected quarter difference 0 for annual, got %d", rel.QuarterDifference)
	}
	if rel.YearDifference != 1 {
		t.Errorf("Expected year difference 1, got %d", rel.YearDifference)
	}
}

func TestCompareAnnualToAnnual(t *testing.T) {
	rel, err := ComparePeriods("2022_Annual", "2023_Annual")
	if err != nil {
		t.Fatalf("ComparePeriods failed: %v", err)
	}
	if rel.YearDifference != 1 || rel.QuarterComparable {
		t.Errorf("Expected (1, not comparable), got (%d, %v)", rel.YearDifference, rel.QuarterComparable)
	}
	if rel.Description != "1 year(s) later" {
		t.Errorf("Unexpected description: %q", rel.Description)
	}
}

func TestComparePeriodsMalformed(t *testing.T) {
	if _, err := ComparePeriods("2022_Q1", "bogus"); !errors.Is(err, ErrBadPeriod) {
		t.Errorf("Expected ErrBadPeriod, got %v", err)
	}
}
