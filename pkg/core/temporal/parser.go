package temporal

import (
	"regexp"
	"strconv"
	"strings"
)

// ReferenceKind distinguishes explicit period mentions from relative ones.
type ReferenceKind string

const (
	// RefExplicit is a concrete period mention such as "Q3 2022".
	RefExplicit ReferenceKind = "explicit"
	// RefRelativeQuarters is a directional offset such as "last 4 quarters".
	RefRelativeQuarters ReferenceKind = "relative_quarters"
)

// Reference is one temporal reference recovered from free text. Explicit
// references carry a Period; relative references carry the number of
// quarters to walk back from the most recent available period.
type Reference struct {
	Kind       ReferenceKind `json:"kind"`
	Period     Period        `json:"period,omitempty"`
	Count      int           `json:"count,omitempty"`
	Confidence float64       `json:"confidence"`
}

var (
	reQuarterYear     = regexp.MustCompile(`(?i)\b(q[1-4])\s*(\d{4})\b`)
	reYearQuarter     = regexp.MustCompile(`(?i)\b(\d{4})\s*(q[1-4])\b`)
	reWordQuarterYear = regexp.MustCompile(`(?i)\b(first|second|third|fourth)\s+quarter\s+(?:of\s+)?(\d{4})\b`)
	reYearWordQuarter = regexp.MustCompile(`(?i)\b(\d{4})\s+(first|second|third|fourth)\s+quarter\b`)
	reYearAnnual      = regexp.MustCompile(`(?i)\b(\d{4})\s*annual\b`)
	reAnnualYear      = regexp.MustCompile(`(?i)\bannual\s*(\d{4})\b`)
	reFiscalYear      = regexp.MustCompile(`(?i)\bfy\s*(\d{4})\b`)
	reLastQuarters    = regexp.MustCompile(`(?i)\b(?:last|past)\s+(\d+)\s+quarters?\b`)
)

var wordQuarters = map[string]Quarter{
	"first":  Q1,
	"second": Q2,
	"third":  Q3,
	"fourth": Q4,
}

// ParseReferences scans free text for explicit quarter/year mentions in
// either order, spelled-out quarters, annual mentions, and relative
// quarter counts. All distinct references are returned; duplicates
// collapse to the first occurrence. Out-of-range quarter tokens such as
// "Q5" never match, so an empty result is the correct outcome for text
// with no valid reference. The function never fails on arbitrary input.
func ParseReferences(text string) []Reference {
	var refs []Reference
	seen := make(map[Period]bool)

	addPeriod := func(year int, q Quarter) {
		p := NewPeriod(year, q)
		if seen[p] {
			return
		}
		seen[p] = true
		refs = append(refs, Reference{Kind: RefExplicit, Period: p, Confidence: 0.9})
	}

	for _, m := range reQuarterYear.FindAllStringSubmatch(text, -1) {
		if year, err := strconv.Atoi(m[2]); err == nil {
			addPeriod(year, Quarter(strings.ToUpper(m[1])))
		}
	}
	for _, m := range reYearQuarter.FindAllStringSubmatch(text, -1) {
		if year, err := strconv.Atoi(m[1]); err == nil {
			addPeriod(year, Quarter(strings.ToUpper(m[2])))
		}
	}
	for _, m := range reWordQuarterYear.FindAllStringSubmatch(text, -1) {
		if year, err := strconv.Atoi(m[2]); err == nil {
			addPeriod(year, wordQuarters[strings.ToLower(m[1])])
		}
	}
	for _, m := range reYearWordQuarter.FindAllStringSubmatch(text, -1) {
		if year, err := strconv.Atoi(m[1]); err == nil {
			addPeriod(year, wordQuarters[strings.ToLower(m[2])])
		}
	}
	for _, m := range reYearAnnual.FindAllStringSubmatch(text, -1) {
		if year, err := strconv.Atoi(m[1]); err == nil {
			addPeriod(year, Annual)
		}
	}
	for _, m := range reAnnualYear.FindAllStringSubmatch(text, -1) {
		if year, err := strconv.Atoi(m[1]); err == nil {
			addPeriod(year, Annual)
		}
	}
	for _, m := range reFiscalYear.FindAllStringSubmatch(text, -1) {
		if year, err := strconv.Atoi(m[1]); err == nil {
			addPeriod(year, Annual)
		}
	}

	if m := reLastQuarters.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			refs = append(refs, Reference{Kind: RefRelativeQuarters, Count: n, Confidence: 0.9})
		}
	}

	return refs
}

// ExplicitPeriods returns the distinct periods of the explicit
// references, in the order found.
func ExplicitPeriods(refs []Reference) []Period {
	var periods []Period
	for _, r := range refs {
		if r.Kind == RefExplicit && r.Period != "" {
			periods = append(periods, r.Period)
		}
	}
	return periods
}

// RelativeCount returns the quarter count of the first relative
// reference, if any.
func RelativeCount(refs []Reference) (int, bool) {
	for _, r := range refs {
		if r.Kind == RefRelativeQuarters {
			return r.Count, true
		}
	}
	return 0, false
}
