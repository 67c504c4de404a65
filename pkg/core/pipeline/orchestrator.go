// Package pipeline answers natural-language questions about the bank's
// filings by running sequential stages: classify, parse temporal
// references, retrieve chunks, extract data points, aggregate, plan and
// run calculations, synthesize, review. It is a plain function pipeline.
// Stage failures degrade locally: a store outage answers from no data, a
// failed calculation is dropped, and the reviewer reports what is
// missing.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agentic_finqa/pkg/core/agent"
	"agentic_finqa/pkg/core/aggregate"
	"agentic_finqa/pkg/core/calc"
	"agentic_finqa/pkg/core/extract"
	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/core/retrieval"
	"agentic_finqa/pkg/core/synthesis"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// ErrEmptyQuery reports a blank question.
var ErrEmptyQuery = errors.New("empty query")

// searchLimit caps the ranked term search. Period listings for
// explicitly referenced periods are added on top, so a comparative
// question still sees every period it names.
const searchLimit = 12

// QueryResult is the complete outcome of one question: the answer, the
// evidence behind it, and the review that judged it.
type QueryResult struct {
	QueryID      string                      `json:"query_id"`
	Query        string                      `json:"query"`
	QueryType    models.QueryType            `json:"query_type"`
	Answer       string                      `json:"answer"`
	DataPoints   []models.FinancialDataPoint `json:"data_points,omitempty"`
	Calculations []calc.Result               `json:"calculations,omitempty"`
	Rejected     []extract.RejectedCandidate `json:"rejected,omitempty"`
	Sources      []models.Source             `json:"sources,omitempty"`
	Confidence   float64                     `json:"confidence"`
	Review       synthesis.Review            `json:"review"`
	ElapsedMS    int64                       `json:"elapsed_ms"`
}

// Orchestrator owns the stage collaborators for the query pipeline.
type Orchestrator struct {
	store       retrieval.ChunkStore
	extractor   *extract.Extractor
	synthesizer *synthesis.Synthesizer
	reviewer    *synthesis.Reviewer
	history     *calc.History
	log         zerolog.Logger
}

// NewOrchestrator wires the pipeline over one chunk store and one metric
// catalog. mgr may be nil: synthesis then renders its deterministic
// template instead of calling a provider.
func NewOrchestrator(store retrieval.ChunkStore, catalog *metrics.Catalog, mgr *agent.Manager, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:       store,
		extractor:   extract.NewExtractor(catalog, log),
		synthesizer: synthesis.NewSynthesizer(mgr, log),
		reviewer:    synthesis.NewReviewer(),
		history:     calc.NewHistory(),
		log:         log.With().Str("component", "pipeline").Logger(),
	}
}

// History exposes the diagnostic calculation log.
func (o *Orchestrator) History() *calc.History {
	return o.history
}

// ProcessQuery answers one question end to end. The only error returns
// are a blank question and context cancellation; everything else
// degrades to an answer built from whatever evidence survived, with the
// review recording the gaps.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string) (QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return QueryResult{}, ErrEmptyQuery
	}
	start := time.Now()

	queryType := Classify(query)
	refs := temporal.ParseReferences(query)
	referenced := temporal.ExplicitPeriods(refs)

	chunks := o.retrieve(ctx, query, queryType, referenced)
	if err := ctx.Err(); err != nil {
		return QueryResult{}, err
	}

	points, rejected := o.extractor.ExtractAll(chunks)
	agg := aggregate.Group(points)

	calculations := o.planCalculations(query, queryType, agg, refs)
	comparison := o.compareReferenced(queryType, agg, referenced)

	input := synthesis.Input{
		Query:        query,
		QueryType:    queryType,
		Points:       agg.Points(),
		Calculations: calculations,
		Comparison:   comparison,
	}
	answer := o.synthesizer.Synthesize(ctx, input)
	review := o.reviewer.Review(answer, input.Points, calculations)

	for _, result := range calculations {
		o.history.Append(result)
	}

	result := QueryResult{
		QueryID:      uuid.NewString(),
		Query:        query,
		QueryType:    queryType,
		Answer:       answer,
		DataPoints:   input.Points,
		Calculations: calculations,
		Rejected:     rejected,
		Sources:      collectSources(input.Points),
		Confidence:   review.Confidence,
		Review:       review,
		ElapsedMS:    time.Since(start).Milliseconds(),
	}

	o.log.Info().
		Str("query_type", string(queryType)).
		Int("chunks", len(chunks)).
		Int("data_points", len(input.Points)).
		Int("calculations", len(calculations)).
		Bool("approved", review.Approved).
		Int64("elapsed_ms", result.ElapsedMS).
		Msg("query processed")

	return result, nil
}

// retrieve gathers candidate chunks: a ranked term search plus, for each
// explicitly referenced period, everything filed under that period. The
// union means "compare Q1 2022 and Q1 2023" sees both periods even when
// a stored statement never repeats the question's terms.
func (o *Orchestrator) retrieve(ctx context.Context, query string, queryType models.QueryType, referenced []temporal.Period) []models.ChunkRecord {
	var chunks []models.ChunkRecord
	seen := make(map[string]bool)
	add := func(batch []models.ChunkRecord) {
		for _, chunk := range batch {
			if seen[chunk.ID] {
				continue
			}
			seen[chunk.ID] = true
			chunks = append(chunks, chunk)
		}
	}

	hits, err := o.store.SearchChunks(ctx, query, searchFilters(queryType, referenced), searchLimit)
	if err != nil {
		o.log.Warn().Err(err).Msg("chunk search failed")
	}
	add(hits)

	for _, period := range referenced {
		byPeriod, err := o.store.ListByPeriod(ctx, period)
		if err != nil {
			o.log.Warn().Err(err).Str("period", string(period)).Msg("period listing failed")
			continue
		}
		add(byPeriod)
	}

	return chunks
}

// searchFilters narrows the term search. A single referenced period
// becomes a metadata filter; multi-period questions search unfiltered so
// every named period can rank. Risk questions steer toward the risk
// management section.
func searchFilters(queryType models.QueryType, referenced []temporal.Period) retrieval.SearchFilters {
	var filters retrieval.SearchFilters
	if queryType == models.QueryRiskAnalysis {
		filters.Section = "risk_management"
	}
	if len(referenced) == 1 {
		if year, quarter, err := referenced[0].Parts(); err == nil {
			filters.Year = year
			filters.Quarter = quarter
		}
	}
	return filters
}

// Ratio keyword → input metric pair. NIM uses total assets as the
// denominator; the calculator documents the approximation.
var ratioPlans = []struct {
	kind     calc.CalculationType
	keywords []string
	num, den models.MetricKind
}{
	{calc.CalcROE, []string{"roe", "return on equity"}, models.NetProfit, models.ShareholderEquity},
	{calc.CalcLoanToDeposit, []string{"loan-to-deposit", "loan to deposit", "ldr"}, models.TotalLoans, models.TotalDeposits},
	{calc.CalcNetInterestMargin, []string{"net interest margin", "nim"}, models.NetInterestIncome, models.TotalAssets},
}

// keyMetrics are the headline metrics a bare trend question covers.
var keyMetrics = []models.MetricKind{
	models.NetProfit,
	models.TotalAssets,
	models.TotalLoans,
	models.TotalDeposits,
}

// planCalculations selects and runs calculations for the question.
// Only calculation and trend questions compute anything; comparison
// questions get their numbers from the temporal analysis, and the rest
// go straight to synthesis.
func (o *Orchestrator) planCalculations(query string, queryType models.QueryType, agg *aggregate.Aggregation, refs []temporal.Reference) []calc.Result {
	if queryType != models.QueryCalculation && queryType != models.QueryTrendAnalysis {
		return nil
	}
	lower := strings.ToLower(query)
	var results []calc.Result

	for _, plan := range ratioPlans {
		if !containsAny(lower, plan.keywords) {
			continue
		}
		if ratio, ok := o.latestRatio(agg, plan.kind, plan.num, plan.den); ok {
			results = append(results, ratio)
		}
	}

	if strings.Contains(lower, "growth") || strings.Contains(lower, "percentage change") {
		results = append(results, o.growthResults(lower, agg, refs)...)
	}

	if queryType == models.QueryTrendAnalysis || strings.Contains(lower, "trend") {
		results = append(results, o.trendResults(lower, agg, refs)...)
	}

	return results
}

// latestRatio computes one ratio for the most recent period holding both
// inputs.
func (o *Orchestrator) latestRatio(agg *aggregate.Aggregation, kind calc.CalculationType, num, den models.MetricKind) (calc.Result, bool) {
	periods := agg.Periods()
	for i := len(periods) - 1; i >= 0; i-- {
		numVal, okNum := agg.Value(periods[i], num)
		denVal, okDen := agg.Value(periods[i], den)
		if !okNum || !okDen {
			continue
		}
		ratio, err := calc.ComputeRatio(kind, numVal, denVal)
		if err != nil {
			o.log.Debug().Err(err).Str("calculation", string(kind)).Msg("ratio skipped")
			return nil, false
		}
		return ratio, true
	}
	o.log.Debug().Str("calculation", string(kind)).Msg("no period has both ratio inputs")
	return nil, false
}

// growthResults computes percentage changes for the metric the question
// names. Two referenced periods compare directly; otherwise every
// consecutive pair in the series is reported.
func (o *Orchestrator) growthResults(lower string, agg *aggregate.Aggregation, refs []temporal.Reference) []calc.Result {
	target, ok := targetMetric(lower)
	if !ok {
		o.log.Debug().Msg("growth question names no extractable metric")
		return nil
	}

	referenced := temporal.ExplicitPeriods(refs)
	if len(referenced) >= 2 {
		temporal.SortPeriods(referenced)
		oldVal, okOld := agg.Value(referenced[0], target)
		newVal, okNew := agg.Value(referenced[len(referenced)-1], target)
		if !okOld || !okNew {
			o.log.Debug().Str("metric", string(target)).Msg("referenced period missing the metric")
			return nil
		}
		change, err := calc.PercentageChange(oldVal, newVal)
		if err != nil {
			o.log.Debug().Err(err).Msg("referenced-period change skipped")
			return nil
		}
		return []calc.Result{change}
	}

	periods, values := o.series(agg, target, refs)
	var results []calc.Result
	for i := 1; i < len(values); i++ {
		change, err := calc.PercentageChange(values[i-1], values[i])
		if err != nil {
			o.log.Debug().Err(err).Str("period", string(periods[i])).Msg("sequential change skipped")
			continue
		}
		results = append(results, change)
	}
	return results
}

// trendResults runs trend analysis for the named metric, or for the
// headline metrics when the question names none.
func (o *Orchestrator) trendResults(lower string, agg *aggregate.Aggregation, refs []temporal.Reference) []calc.Result {
	targets := keyMetrics
	if target, ok := targetMetric(lower); ok {
		targets = []models.MetricKind{target}
	}

	var results []calc.Result
	for _, metric := range targets {
		periods, values := o.series(agg, metric, refs)
		trend, err := calc.TrendAnalysis(metric, values, periods)
		if err != nil {
			o.log.Debug().Err(err).Str("metric", string(metric)).Msg("trend skipped")
			continue
		}
		results = append(results, trend)
	}
	return results
}

// series returns a metric's (periods, values), restricted to the window
// a "last N quarters" reference names. The window anchors on the latest
// quarterly period in the data; annual-only data cannot anchor it, so
// the full series stands.
func (o *Orchestrator) series(agg *aggregate.Aggregation, metric models.MetricKind, refs []temporal.Reference) ([]temporal.Period, []float64) {
	periods, values := agg.Series(metric)

	n, ok := temporal.RelativeCount(refs)
	if !ok || n <= 0 {
		return periods, values
	}

	latest := latestQuarterly(periods)
	if latest == "" {
		o.log.Debug().Str("metric", string(metric)).Msg("relative reference unresolved over annual-only data")
		return periods, values
	}

	window := map[temporal.Period]bool{latest: true}
	for _, p := range temporal.PreviousQuarters(latest, n-1) {
		window[p] = true
	}

	var wp []temporal.Period
	var wv []float64
	for i, p := range periods {
		if window[p] {
			wp = append(wp, p)
			wv = append(wv, values[i])
		}
	}
	return wp, wv
}

func latestQuarterly(periods []temporal.Period) temporal.Period {
	var latest temporal.Period
	for _, p := range periods {
		if !p.Quarter().IsQuarterly() {
			continue
		}
		if latest == "" || latest.Before(p) {
			latest = p
		}
	}
	return latest
}

// compareReferenced builds the temporal analysis for comparison
// questions: the relationship between the two periods under comparison
// plus the per-metric movement between them. A question naming fewer
// than two periods compares the two most recent periods in the data,
// the way an unqualified "compare" reads.
func (o *Orchestrator) compareReferenced(queryType models.QueryType, agg *aggregate.Aggregation, referenced []temporal.Period) *synthesis.TemporalComparison {
	if queryType != models.QueryTemporalComparison {
		return nil
	}

	pair := append([]temporal.Period(nil), referenced...)
	temporal.SortPeriods(pair)
	if len(pair) < 2 {
		periods := agg.Periods()
		if len(periods) < 2 {
			o.log.Debug().Msg("comparison needs two periods")
			return nil
		}
		pair = periods[len(periods)-2:]
	}
	from, to := pair[0], pair[len(pair)-1]

	relationship, err := temporal.ComparePeriods(from, to)
	if err != nil {
		o.log.Debug().Err(err).Msg("period comparison skipped")
		return nil
	}

	changes := make(map[models.MetricKind]calc.ChangeResult)
	for metric, oldPoint := range agg.Metrics(from) {
		newPoint, ok := agg.Point(to, metric)
		if !ok {
			continue
		}
		change, err := calc.PercentageChange(oldPoint.Value, newPoint.Value)
		if err != nil {
			continue
		}
		changes[metric] = change
	}
	if len(changes) == 0 {
		changes = nil
	}

	return &synthesis.TemporalComparison{Relationship: relationship, Changes: changes}
}

// targetMetric finds the first extractable metric the question names.
func targetMetric(lower string) (models.MetricKind, bool) {
	for _, metric := range models.ExtractionMetrics() {
		name := strings.ReplaceAll(string(metric), "_", " ")
		if strings.Contains(lower, name) {
			return metric, true
		}
	}
	return "", false
}

// collectSources lists the distinct provenance descriptors behind the
// retained data points, ordered by period then document type.
func collectSources(points []models.FinancialDataPoint) []models.Source {
	seen := make(map[models.Source]bool)
	var sources []models.Source
	for _, p := range points {
		src := models.Source{
			DocumentType: p.Metadata.DocumentType,
			Period:       p.Period,
			Section:      p.SourceSection,
			Page:         p.SourcePage,
		}
		if seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Period != sources[j].Period {
			return sources[i].Period.Before(sources[j].Period)
		}
		if sources[i].DocumentType != sources[j].DocumentType {
			return sources[i].DocumentType < sources[j].DocumentType
		}
		if sources[i].Section != sources[j].Section {
			return sources[i].Section < sources[j].Section
		}
		return sources[i].Page < sources[j].Page
	})
	return sources
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
