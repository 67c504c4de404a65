package extract

import (
	"sort"

	"github.com/rs/zerolog"

	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/core/normalize"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// RejectedCandidate records a value that failed range validation. These
// are diagnostics, not errors: they surface in logs and pipeline output
// so garbage numbers are visible instead of silently dropped.
type RejectedCandidate struct {
	Metric models.MetricKind `json:"metric"`
	Value  float64           `json:"value"`
	Period temporal.Period   `json:"period"`
	Reason string            `json:"reason"`
}

// Extractor derives validated, period-tagged data points from chunks.
type Extractor struct {
	matcher   *Matcher
	validator *RangeValidator
	log       zerolog.Logger
}

// NewExtractor wires matcher and validator over one injected catalog.
func NewExtractor(catalog *metrics.Catalog, log zerolog.Logger) *Extractor {
	return &Extractor{
		matcher:   NewMatcher(catalog),
		validator: NewRangeValidator(catalog),
		log:       log.With().Str("component", "extractor").Logger(),
	}
}

// ExtractChunk processes one chunk. Pre-extracted table metrics are
// re-validated first (structured cells are stronger evidence than
// narrative restatements), then the text patterns run. Every failure
// stays local: a candidate with no digits is skipped, an out-of-band
// value is recorded as rejected, and the rest of the chunk still
// processes. A chunk whose metadata fails the boundary contract yields
// nothing.
func (e *Extractor) ExtractChunk(chunk models.ChunkRecord) ([]models.FinancialDataPoint, []RejectedCandidate) {
	if err := chunk.Metadata.Validate(); err != nil {
		e.log.Warn().Err(err).Str("chunk", chunk.ID).Msg("skipping chunk with invalid metadata")
		return nil, nil
	}

	period := chunk.Metadata.Period()
	page := chunk.Page
	if page == 0 {
		page = 1
	}

	var points []models.FinancialDataPoint
	var rejected []RejectedCandidate

	for _, kind := range sortedTableKinds(chunk.TableMetrics) {
		tm := chunk.TableMetrics[kind]
		if tm.Value <= 0 {
			continue
		}
		result := e.validator.Validate(kind, tm.Value)
		if !result.IsValid {
			rejected = append(rejected, RejectedCandidate{Metric: kind, Value: tm.Value, Period: period, Reason: result.Note})
			e.log.Debug().Str("metric", string(kind)).Float64("value", tm.Value).Msg("rejected table metric")
			continue
		}
		confidence := result.Confidence
		if tm.Confidence > confidence {
			confidence = tm.Confidence
		}
		points = append(points, models.FinancialDataPoint{
			Metric:        kind,
			Value:         tm.Value,
			Period:        period,
			Confidence:    confidence,
			SourcePage:    page,
			SourceSection: sectionLabel(chunk.Section, "table"),
			Metadata:      chunk.Metadata,
		})
	}

	for _, cand := range e.matcher.Match(chunk.Content) {
		value, ok := normalize.ToMillions(cand.Literal, cand.Context)
		if !ok {
			e.log.Debug().Str("metric", string(cand.Metric)).Str("literal", cand.Literal).Msg("candidate has no parseable digits")
			continue
		}
		if value <= 0 {
			continue
		}
		result := e.validator.Validate(cand.Metric, value)
		if !result.IsValid {
			rejected = append(rejected, RejectedCandidate{Metric: cand.Metric, Value: value, Period: period, Reason: result.Note})
			e.log.Debug().Str("metric", string(cand.Metric)).Float64("value", value).Str("reason", result.Note).Msg("rejected candidate")
			continue
		}
		points = append(points, models.FinancialDataPoint{
			Metric:        cand.Metric,
			Value:         value,
			Period:        period,
			Confidence:    result.Confidence,
			SourcePage:    page,
			SourceSection: sectionLabel(chunk.Section, "unknown"),
			Metadata:      chunk.Metadata,
		})
	}

	return points, rejected
}

// ExtractAll processes chunks in order. Per-chunk failures never abort
// the batch; partial results from the other chunks are preserved.
func (e *Extractor) ExtractAll(chunks []models.ChunkRecord) ([]models.FinancialDataPoint, []RejectedCandidate) {
	var points []models.FinancialDataPoint
	var rejected []RejectedCandidate
	for _, chunk := range chunks {
		p, r := e.ExtractChunk(chunk)
		points = append(points, p...)
		rejected = append(rejected, r...)
	}
	e.log.Debug().Int("chunks", len(chunks)).Int("points", len(points)).Int("rejected", len(rejected)).Msg("extraction complete")
	return points, rejected
}

func sectionLabel(section, fallback string) string {
	if section == "" {
		return fallback
	}
	return section
}

func sortedTableKinds(tm map[models.MetricKind]models.TableMetric) []models.MetricKind {
	if len(tm) == 0 {
		return nil
	}
	kinds := make([]models.MetricKind, 0, len(tm))
	for k := range tm {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
