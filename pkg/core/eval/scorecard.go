// Package eval scores answers after the fact: a deterministic scorecard
// over citations, figures, and answer shape, plus an LLM judge for
// qualitative review. Nothing here feeds back into the pipeline; the
// scores exist for regression tracking and report cards.
package eval

import (
	"math"
	"strings"

	"agentic_finqa/pkg/core/pipeline"
	"agentic_finqa/pkg/models"
)

// figureTolerance is the absolute difference under which an extracted
// figure counts as matching its expected value. Statement figures are
// quoted in millions, so this sits far below reporting precision.
const figureTolerance = 0.01

// wellCitedConfidence is the extraction confidence a cited data point
// needs to count as well cited.
const wellCitedConfidence = 0.7

// CitationQuality reports how much of the extracted evidence carries
// provenance.
type CitationQuality struct {
	CitationRate   float64 `json:"citation_rate"`
	AvgConfidence  float64 `json:"average_confidence"`
	WellCitedShare float64 `json:"well_cited_percentage"`
	TotalPoints    int     `json:"total_data_points"`
}

// CitationScore grades the provenance of extracted data points. A point
// is cited when it names a source page and document type; well cited
// additionally requires confidence above the threshold.
func CitationScore(points []models.FinancialDataPoint) CitationQuality {
	if len(points) == 0 {
		return CitationQuality{}
	}

	cited, wellCited := 0, 0
	confidenceSum := 0.0
	for _, dp := range points {
		confidenceSum += dp.Confidence
		if dp.SourcePage <= 0 || dp.Metadata.DocumentType == "" {
			continue
		}
		cited++
		if dp.Confidence > wellCitedConfidence {
			wellCited++
		}
	}

	total := float64(len(points))
	return CitationQuality{
		CitationRate:   round3(float64(cited) / total),
		AvgConfidence:  round3(confidenceSum / total),
		WellCitedShare: round3(float64(wellCited) / total),
		TotalPoints:    len(points),
	}
}

// FigureAccuracy reports extracted figures against expected values.
type FigureAccuracy struct {
	ExactMatchRate   float64 `json:"exact_match_rate"`
	AvgRelativeError float64 `json:"average_relative_error"`
	MaxRelativeError float64 `json:"max_relative_error"`
}

// CompareFigures pairs extracted values with expected values by index.
// Expected zeros contribute no relative error; with nothing measurable
// the error terms report 1.
func CompareFigures(extracted, expected []float64) FigureAccuracy {
	if len(extracted) == 0 || len(expected) == 0 {
		return FigureAccuracy{ExactMatchRate: 0, AvgRelativeError: 1, MaxRelativeError: 1}
	}

	pairs := len(extracted)
	if len(expected) < pairs {
		pairs = len(expected)
	}

	exact := 0
	var relErrors []float64
	for i := 0; i < pairs; i++ {
		diff := math.Abs(extracted[i] - expected[i])
		if diff < figureTolerance {
			exact++
		}
		if expected[i] != 0 {
			relErrors = append(relErrors, diff/math.Abs(expected[i]))
		}
	}

	acc := FigureAccuracy{
		ExactMatchRate:   round3(float64(exact) / float64(len(extracted))),
		AvgRelativeError: 1,
		MaxRelativeError: 1,
	}
	if len(relErrors) > 0 {
		sum, maxErr := 0.0, 0.0
		for _, e := range relErrors {
			sum += e
			if e > maxErr {
				maxErr = e
			}
		}
		acc.AvgRelativeError = round3(sum / float64(len(relErrors)))
		acc.MaxRelativeError = round3(maxErr)
	}
	return acc
}

// ResponseQuality grades one answer's shape against its question.
type ResponseQuality struct {
	Completeness      float64 `json:"completeness"`
	Conciseness       float64 `json:"conciseness"`
	FinancialAccuracy float64 `json:"financial_accuracy"`
	Overall           float64 `json:"overall_quality"`
	Words             int     `json:"answer_length"`
}

// ScoreResponse grades a pipeline result. Completeness is the share of
// question terms the answer repeats; conciseness bands on word count;
// financial accuracy blends review confidence with evidence volume. The
// overall score weights them 30/20/40, with up to 10 for calculations.
func ScoreResponse(result pipeline.QueryResult) ResponseQuality {
	queryTerms := termSet(result.Query)
	answerTerms := termSet(result.Answer)

	completeness := 0.0
	if len(queryTerms) > 0 {
		shared := 0
		for term := range queryTerms {
			if answerTerms[term] {
				shared++
			}
		}
		completeness = float64(shared) / float64(len(queryTerms))
	}

	words := len(strings.Fields(result.Answer))
	var conciseness float64
	switch {
	case words < 50:
		conciseness = 0.3
	case words < 300:
		conciseness = 0.9
	case words < 600:
		conciseness = 0.7
	default:
		conciseness = 0.5
	}

	accuracy := math.Min(1.0, result.Confidence*0.7+float64(len(result.DataPoints))/10*0.3)
	calcShare := math.Min(1.0, float64(len(result.Calculations))/5)

	overall := completeness*0.3 + conciseness*0.2 + accuracy*0.4 + calcShare*0.1

	return ResponseQuality{
		Completeness:      round3(completeness),
		Conciseness:       round3(conciseness),
		FinancialAccuracy: round3(accuracy),
		Overall:           round3(overall),
		Words:             words,
	}
}

// Grade maps a quality score onto the report-card scale.
func Grade(score float64) string {
	switch {
	case score >= 0.9:
		return "A+"
	case score >= 0.8:
		return "A"
	case score >= 0.7:
		return "B"
	case score >= 0.6:
		return "C"
	default:
		return "D"
	}
}

// Summarize averages per-answer quality into one suite score and grade.
func Summarize(qualities []ResponseQuality) (float64, string) {
	if len(qualities) == 0 {
		return 0, Grade(0)
	}
	sum := 0.0
	for _, q := range qualities {
		sum += q.Overall
	}
	avg := round3(sum / float64(len(qualities)))
	return avg, Grade(avg)
}

func termSet(s string) map[string]bool {
	terms := make(map[string]bool)
	for _, term := range strings.Fields(strings.ToLower(s)) {
		terms[term] = true
	}
	return terms
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
