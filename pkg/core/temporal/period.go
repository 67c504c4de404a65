// Package temporal handles canonical reporting-period keys, free-text
// period references, and period-to-period relationships for quarterly
// and annual bank filings.
package temporal

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Quarter identifies one reporting interval within a fiscal year.
type Quarter string

const (
	Q1     Quarter = "Q1"
	Q2     Quarter = "Q2"
	Q3     Quarter = "Q3"
	Q4     Quarter = "Q4"
	Annual Quarter = "Annual"
)

// ordinal returns the ordering position of a quarter. Annual sorts after
// Q4 within the same year but is excluded from quarter arithmetic.
// Unknown quarters return 0.
func (q Quarter) ordinal() int {
	switch q {
	case Q1:
		return 1
	case Q2:
		return 2
	case Q3:
		return 3
	case Q4:
		return 4
	case Annual:
		return 5
	}
	return 0
}

// Valid reports whether q is one of the five recognized values.
func (q Quarter) Valid() bool {
	return q.ordinal() != 0
}

// IsQuarterly reports whether q is a Q1-Q4 interval rather than Annual.
func (q Quarter) IsQuarterly() bool {
	return q.ordinal() >= 1 && q.ordinal() <= 4
}

func quarterFromOrdinal(n int) Quarter {
	switch n {
	case 1:
		return Q1
	case 2:
		return Q2
	case 3:
		return Q3
	case 4:
		return Q4
	case 5:
		return Annual
	}
	return ""
}

// ErrBadPeriod reports a period key that does not follow {year}_{quarter}.
var ErrBadPeriod = errors.New("malformed period key")

// Period is the canonical reporting-period key, e.g. "2022_Q1" or
// "2023_Annual". It is the sole join attribute between extraction,
// aggregation, and calculation; no other representation of "when" may
// leak into downstream logic.
type Period string

// NewPeriod builds the canonical key for a year and quarter.
func NewPeriod(year int, q Quarter) Period {
	return Period(fmt.Sprintf("%d_%s", year, q))
}

// ResolvePeriod derives the canonical period key from document metadata.
// Annual filings map to {year}_Annual, quarterly filings to
// {year}_{quarter}. Callers validate the quarter at the system boundary.
func ResolvePeriod(year int, q Quarter) Period {
	if q == Annual {
		return NewPeriod(year, Annual)
	}
	return NewPeriod(year, q)
}

// Parts splits a period key into its year and quarter.
func (p Period) Parts() (int, Quarter, error) {
	fields := strings.SplitN(string(p), "_", 2)
	if len(fields) != 2 {
		return 0, "", fmt.Errorf("%w: %q", ErrBadPeriod, string(p))
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrBadPeriod, string(p))
	}
	q := Quarter(fields[1])
	if !q.Valid() {
		return 0, "", fmt.Errorf("%w: %q", ErrBadPeriod, string(p))
	}
	return year, q, nil
}

// Year returns the fiscal year portion, or 0 for a malformed key.
func (p Period) Year() int {
	year, _, err := p.Parts()
	if err != nil {
		return 0
	}
	return year
}

// Quarter returns the quarter portion, or "" for a malformed key.
func (p Period) Quarter() Quarter {
	_, q, err := p.Parts()
	if err != nil {
		return ""
	}
	return q
}

// IsAnnual reports whether p is an annual key.
func (p Period) IsAnnual() bool {
	return p.Quarter() == Annual
}

// Before reports whether p precedes other in (year, quarter-ordinal)
// order. Malformed keys sort before well-formed ones.
func (p Period) Before(other Period) bool {
	y1, q1, err1 := p.Parts()
	y2, q2, err2 := other.Parts()
	if err1 != nil || err2 != nil {
		return err1 != nil && err2 == nil
	}
	if y1 != y2 {
		return y1 < y2
	}
	return q1.ordinal() < q2.ordinal()
}

// SortPeriods orders period keys chronologically in place.
func SortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Before(periods[j])
	})
}

// PreviousQuarters returns the n quarterly periods preceding p, most
// recent first. Annual and malformed keys have no quarterly
// predecessors and yield nil.
func PreviousQuarters(p Period, n int) []Period {
	year, q, err := p.Parts()
	if err != nil || !q.IsQuarterly() || n <= 0 {
		return nil
	}
	out := make([]Period, 0, n)
	ord := q.ordinal()
	for i := 0; i < n; i++ {
		ord--
		if ord < 1 {
			ord = 4
			year--
		}
		out = append(out, NewPeriod(year, quarterFromOrdinal(ord)))
	}
	return out
}

// LatestPeriod returns the chronologically last key in periods, or ""
// when the slice is empty.
func LatestPeriod(periods []Period) Period {
	var latest Period
	for _, p := range periods {
		if latest == "" || latest.Before(p) {
			latest = p
		}
	}
	return latest
}
