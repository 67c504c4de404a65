// Package query exposes the question-answering pipeline over HTTP.
package query

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"agentic_finqa/pkg/core/pipeline"
)

// Request is the query endpoint's body.
type Request struct {
	Question string `json:"question"`
}

// Handler holds dependencies for the query endpoints.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	log          zerolog.Logger
}

// NewHandler creates a query handler over one pipeline.
func NewHandler(o *pipeline.Orchestrator, log zerolog.Logger) *Handler {
	return &Handler{
		orchestrator: o,
		log:          log.With().Str("component", "api.query").Logger(),
	}
}

// HandleQuery answers POST /api/query with the full pipeline result.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.orchestrator.ProcessQuery(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) {
			http.Error(w, "question is required", http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("query failed")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HealthResponse is the monitoring contract.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HandleHealth answers GET /api/health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:  "healthy",
		Service: "FAB Financial Analyzer",
	})
}

// Capabilities describes what the engine answers.
type Capabilities struct {
	Capabilities       []string `json:"capabilities"`
	SupportedDocuments []string `json:"supported_documents"`
	ExampleQueries     []string `json:"example_queries"`
}

// HandleCapabilities answers GET /api/capabilities.
func (h *Handler) HandleCapabilities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Capabilities{
		Capabilities: []string{
			"Single-fact metric lookup with provenance",
			"Financial ratio calculations (ROE, loan-to-deposit, net interest margin)",
			"Growth and trend analysis across reporting periods",
			"Temporal comparisons between quarters and years",
			"Risk section retrieval",
		},
		SupportedDocuments: []string{
			"Quarterly Financial Statements",
			"Earnings Presentations",
			"Results Call Transcripts",
			"Annual Reports",
		},
		ExampleQueries: []string{
			"What was the net profit in Q1 2023?",
			"Calculate the return on equity for Q2 2023",
			"Compare total deposits in Q4 2022 vs Q4 2023",
			"Show the net profit trend over the last 4 quarters",
		},
	})
}
