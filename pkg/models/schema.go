// Package models holds the shared record types exchanged between
// ingestion, retrieval, extraction, and the query pipeline: document
// metadata, content chunks, and extracted financial data points.
package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"agentic_finqa/pkg/core/temporal"
)

// MetricKind names one extractable financial metric. The set is closed
// for extraction purposes; each kind carries its own validation bands in
// the metric catalog.
type MetricKind string

const (
	NetProfit         MetricKind = "net_profit"
	ShareholderEquity MetricKind = "shareholder_equity"
	TotalAssets       MetricKind = "total_assets"
	TotalLoans        MetricKind = "total_loans"
	TotalDeposits     MetricKind = "total_deposits"
	NetInterestIncome MetricKind = "net_interest_income"
)

// ExtractionMetrics returns the metrics the extractor scans for, in a
// stable order.
func ExtractionMetrics() []MetricKind {
	return []MetricKind{
		NetProfit,
		ShareholderEquity,
		TotalAssets,
		TotalLoans,
		TotalDeposits,
		NetInterestIncome,
	}
}

// DocumentType classifies a source filing.
type DocumentType string

const (
	DocFinancialStatement   DocumentType = "financial_statement"
	DocEarningsPresentation DocumentType = "earnings_presentation"
	DocResultsCall          DocumentType = "results_call"
	DocAnnualReport         DocumentType = "annual_report"
)

var validate = validator.New()

// DocumentMetadata describes the filing a chunk came from. Required
// fields are enforced at the system boundary, before content enters the
// extraction engine.
type DocumentMetadata struct {
	Bank          string           `json:"bank" validate:"required"`
	Year          int              `json:"year" validate:"required,gte=1990,lte=2100"`
	Quarter       temporal.Quarter `json:"quarter" validate:"required,oneof=Q1 Q2 Q3 Q4 Annual"`
	DocumentType  DocumentType     `json:"document_type" validate:"required,oneof=financial_statement earnings_presentation results_call annual_report"`
	FilePath      string           `json:"file_path,omitempty"`
	ReportingDate time.Time        `json:"reporting_date"`
	Pages         int              `json:"pages,omitempty" validate:"gte=0"`
	Currency      string           `json:"currency"`
	Units         string           `json:"units"`
}

// WithDefaults returns a copy with the bank's reporting conventions
// filled in where unset: AED as currency, millions as units.
func (m DocumentMetadata) WithDefaults() DocumentMetadata {
	if m.Currency == "" {
		m.Currency = "AED"
	}
	if m.Units == "" {
		m.Units = "millions"
	}
	return m
}

// Validate enforces the boundary contract on metadata.
func (m DocumentMetadata) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("document metadata: %w", err)
	}
	return nil
}

// Period resolves the canonical reporting period for this metadata.
func (m DocumentMetadata) Period() temporal.Period {
	return temporal.ResolvePeriod(m.Year, m.Quarter)
}

// TableMetric is a value pre-extracted from a table grid by the
// ingestion stage. The extractor re-validates it against the metric's
// plausibility bands before it becomes a data point.
type TableMetric struct {
	Value      float64 `json:"value"`
	RowLabel   string  `json:"row_label,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ChunkRecord is one retrievable fragment of a filing: text content plus
// metadata, a section label, a page reference, and optionally metrics
// already lifted from an embedded table.
type ChunkRecord struct {
	ID           string                     `json:"id"`
	Content      string                     `json:"content" validate:"required"`
	Metadata     DocumentMetadata           `json:"metadata"`
	Section      string                     `json:"section,omitempty"`
	Page         int                        `json:"page,omitempty"`
	TableMetrics map[MetricKind]TableMetric `json:"table_metrics,omitempty"`
}

// Validate enforces the retrieval boundary contract on a chunk.
func (c ChunkRecord) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("chunk record: %w", err)
	}
	return c.Metadata.Validate()
}

// FinancialDataPoint is the durable unit produced by extraction: one
// validated, unit-normalized metric value tied to exactly one reporting
// period. Value is always in millions of the reporting currency and
// always positive. Data points are immutable once created and live only
// for the duration of one query.
type FinancialDataPoint struct {
	Metric        MetricKind       `json:"metric"`
	Value         float64          `json:"value"`
	Period        temporal.Period  `json:"period"`
	Confidence    float64          `json:"confidence"`
	SourcePage    int              `json:"source_page,omitempty"`
	SourceSection string           `json:"source_section,omitempty"`
	Metadata      DocumentMetadata `json:"metadata"`
}

// Source is a provenance descriptor surfaced alongside answers.
type Source struct {
	DocumentType DocumentType    `json:"document_type"`
	Period       temporal.Period `json:"period"`
	Section      string          `json:"section,omitempty"`
	Page         int             `json:"page,omitempty"`
}

// QueryType routes a question through the pipeline.
type QueryType string

const (
	QuerySingleFact         QueryType = "single_fact"
	QueryMultiHop           QueryType = "multi_hop"
	QueryCalculation        QueryType = "calculation"
	QueryTemporalComparison QueryType = "temporal_comparison"
	QueryRiskAnalysis       QueryType = "risk_analysis"
	QueryTrendAnalysis      QueryType = "trend_analysis"
)
