package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"agentic_finqa/pkg/core/retrieval"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

// ChunkRepo persists document chunks in Postgres and implements
// retrieval.ChunkStore. Core metadata fields are flattened into columns
// so filters translate to WHERE clauses; the full metadata and any table
// metrics ride along as JSONB.
type ChunkRepo struct{}

// NewChunkRepo creates a repository over the shared pool.
func NewChunkRepo() *ChunkRepo {
	return &ChunkRepo{}
}

const chunkSchema = `
CREATE TABLE IF NOT EXISTS document_chunks (
	id            TEXT PRIMARY KEY,
	content       TEXT NOT NULL,
	section       TEXT NOT NULL DEFAULT '',
	page          INT NOT NULL DEFAULT 0,
	bank          TEXT NOT NULL,
	year          INT NOT NULL,
	quarter       TEXT NOT NULL,
	document_type TEXT NOT NULL,
	metadata      JSONB NOT NULL,
	table_metrics JSONB,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS document_chunks_period_idx ON document_chunks (year, quarter);
`

// EnsureSchema creates the chunk table when it does not exist. Schema
// management beyond that (migrations) happens outside this process.
func (r *ChunkRepo) EnsureSchema(ctx context.Context) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if _, err := pool.Exec(ctx, chunkSchema); err != nil {
		return fmt.Errorf("failed to ensure chunk schema: %w", err)
	}
	return nil
}

// AddChunk validates and upserts a chunk keyed by ID.
func (r *ChunkRepo) AddChunk(ctx context.Context, chunk models.ChunkRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if err := chunk.Validate(); err != nil {
		return fmt.Errorf("add chunk %s: %w", chunk.ID, err)
	}

	metadata, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk metadata: %w", err)
	}
	var tableMetrics []byte
	if len(chunk.TableMetrics) > 0 {
		tableMetrics, err = json.Marshal(chunk.TableMetrics)
		if err != nil {
			return fmt.Errorf("failed to marshal table metrics: %w", err)
		}
	}

	query := `
		INSERT INTO document_chunks
			(id, content, section, page, bank, year, quarter, document_type, metadata, table_metrics, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET
			content = EXCLUDED.content,
			section = EXCLUDED.section,
			page = EXCLUDED.page,
			bank = EXCLUDED.bank,
			year = EXCLUDED.year,
			quarter = EXCLUDED.quarter,
			document_type = EXCLUDED.document_type,
			metadata = EXCLUDED.metadata,
			table_metrics = EXCLUDED.table_metrics,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = pool.Exec(ctx, query,
		chunk.ID, chunk.Content, chunk.Section, chunk.Page,
		chunk.Metadata.Bank, chunk.Metadata.Year, string(chunk.Metadata.Quarter),
		string(chunk.Metadata.DocumentType), metadata, tableMetrics, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// GetChunk loads one chunk by ID.
func (r *ChunkRepo) GetChunk(ctx context.Context, id string) (models.ChunkRecord, error) {
	pool := GetPool()
	if pool == nil {
		return models.ChunkRecord{}, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT id, content, section, page, metadata, table_metrics FROM document_chunks WHERE id = $1`
	chunk, err := scanChunk(pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChunkRecord{}, fmt.Errorf("%w: %s", retrieval.ErrChunkNotFound, id)
		}
		return models.ChunkRecord{}, fmt.Errorf("failed to load chunk %s: %w", id, err)
	}
	return chunk, nil
}

// SearchChunks returns up to limit chunks matching the filters, ranked
// by how many distinct query terms their content contains (ILIKE per
// term). Mirrors the in-memory store's ranking so both backends answer
// queries the same way.
func (r *ChunkRepo) SearchChunks(ctx context.Context, query string, filters retrieval.SearchFilters, limit int) ([]models.ChunkRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	terms := distinctTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var args []interface{}
	var scoreParts []string
	for _, term := range terms {
		args = append(args, "%"+term+"%")
		scoreParts = append(scoreParts, fmt.Sprintf("(CASE WHEN content ILIKE $%d THEN 1 ELSE 0 END)", len(args)))
	}
	score := strings.Join(scoreParts, " + ")

	conditions := []string{fmt.Sprintf("(%s) > 0", score)}
	if filters.Year != 0 {
		args = append(args, filters.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if filters.Quarter != "" {
		args = append(args, string(filters.Quarter))
		conditions = append(conditions, fmt.Sprintf("quarter = $%d", len(args)))
	}
	if filters.DocumentType != "" {
		args = append(args, string(filters.DocumentType))
		conditions = append(conditions, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if filters.Section != "" {
		args = append(args, filters.Section)
		conditions = append(conditions, fmt.Sprintf("section ILIKE $%d", len(args)))
	}

	sql := fmt.Sprintf(`
		SELECT id, content, section, page, metadata, table_metrics
		FROM document_chunks
		WHERE %s
		ORDER BY (%s) DESC, updated_at ASC, id ASC`,
		strings.Join(conditions, " AND "), score)
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// ListByPeriod returns every chunk filed for the given period.
func (r *ChunkRepo) ListByPeriod(ctx context.Context, period temporal.Period) ([]models.ChunkRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	year, quarter, err := period.Parts()
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	query := `
		SELECT id, content, section, page, metadata, table_metrics
		FROM document_chunks
		WHERE year = $1 AND quarter = $2
		ORDER BY updated_at ASC, id ASC`
	rows, err := pool.Query(ctx, query, year, string(quarter))
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks for %s: %w", period, err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChunk(row rowScanner) (models.ChunkRecord, error) {
	var chunk models.ChunkRecord
	var metadata []byte
	var tableMetrics []byte

	if err := row.Scan(&chunk.ID, &chunk.Content, &chunk.Section, &chunk.Page, &metadata, &tableMetrics); err != nil {
		return models.ChunkRecord{}, err
	}
	if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
		return models.ChunkRecord{}, fmt.Errorf("failed to unmarshal chunk metadata: %w", err)
	}
	if len(tableMetrics) > 0 {
		if err := json.Unmarshal(tableMetrics, &chunk.TableMetrics); err != nil {
			return models.ChunkRecord{}, fmt.Errorf("failed to unmarshal table metrics: %w", err)
		}
	}
	return chunk, nil
}

func collectChunks(rows pgx.Rows) ([]models.ChunkRecord, error) {
	var out []models.ChunkRecord
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading chunk rows: %w", err)
	}
	return out, nil
}

// distinctTerms lowercases and splits a query, dropping duplicates.
func distinctTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool, len(fields))
	var terms []string
	for _, f := range fields {
		f = strings.Trim(f, ".,;:?!\"'()")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
