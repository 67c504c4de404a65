// Package documents exposes filing ingestion over HTTP.
package documents

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"agentic_finqa/pkg/core/ingest"
	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/core/retrieval"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

var (
	chunkStore retrieval.ChunkStore
	parser     *ingest.Parser
	log        zerolog.Logger
)

// Init wires the ingestion endpoint to a chunk store and metric catalog.
func Init(store retrieval.ChunkStore, catalog *metrics.Catalog, logger zerolog.Logger) {
	chunkStore = store
	parser = ingest.NewParser(catalog, logger)
	log = logger.With().Str("component", "api.documents").Logger()
}

// UploadResponse reports what one filing produced.
type UploadResponse struct {
	Period temporal.Period `json:"period"`
	Chunks int             `json:"chunks"`
}

// HandleUpload answers POST /api/documents. The body is the filing HTML;
// metadata rides in query parameters: bank, year, quarter, type, plus
// optional currency/units/pages overrides. Metadata that fails the
// boundary contract rejects the whole filing.
func HandleUpload(w http.ResponseWriter, r *http.Request) {
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

	meta, err := metadataFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chunks, err := parser.ParseHTML(r.Body, meta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, chunk := range chunks {
		if err := chunkStore.AddChunk(r.Context(), chunk); err != nil {
			log.Error().Err(err).Str("chunk", chunk.ID).Msg("chunk store write failed")
			http.Error(w, fmt.Sprintf("failed to store chunk %s", chunk.ID), http.StatusInternalServerError)
			return
		}
	}

	meta = meta.WithDefaults()
	log.Info().
		Str("period", string(meta.Period())).
		Str("document_type", string(meta.DocumentType)).
		Int("chunks", len(chunks)).
		Msg("filing ingested")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UploadResponse{
		Period: meta.Period(),
		Chunks: len(chunks),
	})
}

func metadataFromQuery(r *http.Request) (models.DocumentMetadata, error) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return models.DocumentMetadata{}, fmt.Errorf("year parameter is required: %w", err)
	}

	meta := models.DocumentMetadata{
		Bank:         q.Get("bank"),
		Year:         year,
		Quarter:      temporal.Quarter(q.Get("quarter")),
		DocumentType: models.DocumentType(q.Get("type")),
		Currency:     q.Get("currency"),
		Units:        q.Get("units"),
	}
	if pages := q.Get("pages"); pages != "" {
		if n, err := strconv.Atoi(pages); err == nil {
			meta.Pages = n
		}
	}
	return meta, nil
}
