package temporal

import "fmt"

// PeriodRelationship describes the distance and direction between two
// periods. The numeric differences are authoritative; Description is a
// derived convenience string and must not be parsed for ordering.
type PeriodRelationship struct {
	From              Period `json:"from"`
	To                Period `json:"to"`
	YearDifference    int    `json:"year_difference"`
	QuarterDifference int    `json:"quarter_difference"`
	QuarterComparable bool   `json:"quarter_comparable"`
	Description       string `json:"description"`
}

// ComparePeriods computes the signed year and quarter distance from a to
// b. Quarter arithmetic uses Q1..Q4 ordinals 1..4; when either period is
// Annual the quarter difference is not meaningful and the relationship
// is flagged quarter-incomparable instead of being forced into quarter
// math.
func ComparePeriods(a, b Period) (PeriodRelationship, error) {
	yearA, qA, err := a.Parts()
	if err != nil {
		return PeriodRelationship{}, fmt.Errorf("compare periods: %w", err)
	}
	yearB, qB, err := b.Parts()
	if err != nil {
		return PeriodRelationship{}, fmt.Errorf("compare periods: %w", err)
	}

	rel := PeriodRelationship{
		From:           a,
		To:             b,
		YearDifference: yearB - yearA,
	}

	if !qA.IsQuarterly() || !qB.IsQuarterly() {
		rel.Description = describeAnnual(rel.YearDifference, qA, qB)
		return rel, nil
	}

	rel.QuarterComparable = true
	rel.QuarterDifference = qB.ordinal() - qA.ordinal()
	rel.Description = describeQuarterly(rel.YearDifference, rel.QuarterDifference)
	return rel, nil
}

func describeQuarterly(yearDiff, quarterDiff int) string {
	if yearDiff == 0 {
		if quarterDiff == 0 {
			return "same period"
		}
		return fmt.Sprintf("same year, %d quarter(s) %s", abs(quarterDiff), direction(quarterDiff))
	}
	total := yearDiff*4 + quarterDiff
	years, quarters := abs(total)/4, abs(total)%4
	if years == 0 {
		return fmt.Sprintf("%d quarter(s) %s", quarters, direction(total))
	}
	return fmt.Sprintf("%d year(s) and %d quarter(s) %s", years, quarters, direction(total))
}

func describeAnnual(yearDiff int, qA, qB Quarter) string {
	if qA == Annual && qB == Annual {
		if yearDiff == 0 {
			return "same period"
		}
		return fmt.Sprintf("%d year(s) %s", abs(yearDiff), direction(yearDiff))
	}
	if yearDiff == 0 {
		return "same year, annual versus quarterly basis"
	}
	return fmt.Sprintf("%d year(s) %s, annual versus quarterly basis", abs(yearDiff), direction(yearDiff))
}

func direction(n int) string {
	if n > 0 {
		return "later"
	}
	return "earlier"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
