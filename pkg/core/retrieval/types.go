// Package retrieval defines the chunk store boundary between ingested
// filing content and the query pipeline. The pipeline depends only on
// the ChunkStore interface; the in-memory implementation here serves
// development and tests, the Postgres implementation in pkg/core/store
// serves deployments.
package retrieval

import (
	"context"
	"errors"
	"strings"

	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// ErrChunkNotFound reports a lookup for an unknown chunk ID.
var ErrChunkNotFound = errors.New("chunk not found")

// SearchFilters narrows a search to chunks whose metadata matches every
// set field. Zero values mean "any".
type SearchFilters struct {
	Year         int                 `json:"year,omitempty"`
	Quarter      temporal.Quarter    `json:"quarter,omitempty"`
	DocumentType models.DocumentType `json:"document_type,omitempty"`
	Section      string              `json:"section,omitempty"`
}

// Matches reports whether a chunk's metadata and section pass the
// filters.
func (f SearchFilters) Matches(chunk models.ChunkRecord) bool {
	if f.Year != 0 && chunk.Metadata.Year != f.Year {
		return false
	}
	if f.Quarter != "" && chunk.Metadata.Quarter != f.Quarter {
		return false
	}
	if f.DocumentType != "" && chunk.Metadata.DocumentType != f.DocumentType {
		return false
	}
	if f.Section != "" && !strings.EqualFold(chunk.Section, f.Section) {
		return false
	}
	return true
}

// ChunkStore is the retrieval boundary. Implementations must validate
// chunk metadata on write so that everything handed to the extraction
// engine already satisfies the boundary contract.
type ChunkStore interface {
	AddChunk(ctx context.Context, chunk models.ChunkRecord) error
	GetChunk(ctx context.Context, id string) (models.ChunkRecord, error)
	SearchChunks(ctx context.Context, query string, filters SearchFilters, limit int) ([]models.ChunkRecord, error)
	ListByPeriod(ctx context.Context, period temporal.Period) ([]models.ChunkRecord, error)
}
