package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// MemoryStore implements ChunkStore with in-memory maps. Search ranks by
// term overlap with the query, which is enough for statement-sized
// corpora; deployments needing real relevance use the Postgres store.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]models.ChunkRecord
	order  []string
}

// NewMemoryStore creates an empty in-memory chunk store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]models.ChunkRecord)}
}

// AddChunk validates and stores a chunk, assigning an ID when absent.
// Re-adding an existing ID overwrites the stored chunk.
func (s *MemoryStore) AddChunk(_ context.Context, chunk models.ChunkRecord) error {
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	if err := chunk.Validate(); err != nil {
		return fmt.Errorf("add chunk %s: %w", chunk.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.chunks[chunk.ID]; !exists {
		s.order = append(s.order, chunk.ID)
	}
	s.chunks[chunk.ID] = chunk
	return nil
}

// GetChunk returns the chunk with the given ID.
func (s *MemoryStore) GetChunk(_ context.Context, id string) (models.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return models.ChunkRecord{}, fmt.Errorf("%w: %s", ErrChunkNotFound, id)
	}
	return chunk, nil
}

// SearchChunks returns up to limit chunks that pass the filters, ranked
// by how many distinct query terms their content contains. Chunks with
// no term overlap are excluded; rank ties keep insertion order so
// results are deterministic.
func (s *MemoryStore) SearchChunks(_ context.Context, query string, filters SearchFilters, limit int) ([]models.ChunkRecord, error) {
	terms := queryTerms(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		chunk models.ChunkRecord
		score int
		pos   int
	}
	var hits []scored
	for pos, id := range s.order {
		chunk := s.chunks[id]
		if !filters.Matches(chunk) {
			continue
		}
		score := overlap(chunk.Content, terms)
		if score == 0 {
			continue
		}
		hits = append(hits, scored{chunk: chunk, score: score, pos: pos})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]models.ChunkRecord, len(hits))
	for i, h := range hits {
		out[i] = h.chunk
	}
	return out, nil
}

// ListByPeriod returns every chunk whose metadata resolves to the given
// period, in insertion order.
func (s *MemoryStore) ListByPeriod(_ context.Context, period temporal.Period) ([]models.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ChunkRecord
	for _, id := range s.order {
		chunk := s.chunks[id]
		if chunk.Metadata.Period() == period {
			out = append(out, chunk)
		}
	}
	return out, nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// queryTerms lowercases and tokenizes a query into distinct terms.
func queryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	var terms []string
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			terms = append(terms, f)
		}
	}
	return terms
}

// overlap counts how many of the terms occur in content.
func overlap(content string, terms []string) int {
	lower := strings.ToLower(content)
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}
