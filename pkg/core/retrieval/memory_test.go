package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"
)

func storeChunk(t *testing.T, s *MemoryStore, id, content string, year int, quarter temporal.Quarter, section string) {
	t.Helper()
	err := s.AddChunk(context.Background(), models.ChunkRecord{
		ID:      id,
		Content: content,
		Metadata: models.DocumentMetadata{
			Bank:         "FAB",
			Year:         year,
			Quarter:      quarter,
			DocumentType: models.DocFinancialStatement,
		}.WithDefaults(),
		Section: section,
	})
	if err != nil {
		t.Fatalf("AddChunk %s failed: %v", id, err)
	}
}

func TestAddAndGetChunk(t *testing.T) {
	s := NewMemoryStore()
	storeChunk(t, s, "c1", "Net profit for the period was AED 5,120 million.", 2022, temporal.Q1, "income_statement")

	got, err := s.GetChunk(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetChunk failed: %v", err)
	}
	if got.Metadata.Year != 2022 || got.Section != "income_statement" {
		t.Errorf("Stored chunk mangled: %+v", got)
	}

	_, err = s.GetChunk(context.Background(), "missing")
	if !errors.Is(err, ErrChunkNotFound) {
		t.Errorf("Expected ErrChunkNotFound, got %v", err)
	}
}

func TestAddChunkAssignsID(t *testing.T) {
	s := NewMemoryStore()
	err := s.AddChunk(context.Background(), models.ChunkRecord{
		Content: "Total assets of AED 821,000 million.",
		Metadata: models.DocumentMetadata{
			Bank:         "FAB",
			Year:         2022,
			Quarter:      temporal.Q2,
			DocumentType: models.DocFinancialStatement,
		}.WithDefaults(),
	})
	if err != nil {
		t.Fatalf("AddChunk failed: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 chunk stored, got %d", s.Len())
	}
}

func TestAddChunkRejectsInvalidMetadata(t *testing.T) {
	s := NewMemoryStore()
	err := s.AddChunk(context.Background(), models.ChunkRecord{
		ID:      "bad",
		Content: "some content",
		Metadata: models.DocumentMetadata{
			Year:         2022,
			Quarter:      temporal.Q1,
			DocumentType: models.DocFinancialStatement,
		},
	})
	if err == nil {
		t.Fatal("Expected validation error for missing bank")
	}
	if s.Len() != 0 {
		t.Errorf("Invalid chunk must not be stored, got %d", s.Len())
	}
}

func TestSearchRanksByTermOverlap(t *testing.T) {
	s := NewMemoryStore()
	storeChunk(t, s, "profit", "Net profit for the period was AED 5,120 million.", 2022, temporal.Q3, "income_statement")
	storeChunk(t, s, "deposits", "Customer deposits grew to AED 621,000 million.", 2022, temporal.Q3, "balance_sheet")
	storeChunk(t, s, "both", "Net profit rose while customer deposits held steady.", 2022, temporal.Q3, "highlights")

	got, err := s.SearchChunks(context.Background(), "net profit deposits", SearchFilters{}, 10)
	if err != nil {
		t.Fatalf("SearchChunks failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 hits, got %d", len(got))
	}
	if got[0].ID != "both" {
		t.Errorf("Expected chunk with most overlapping terms first, got %s", got[0].ID)
	}
}

func TestSearchAppliesFilters(t *testing.T) {
	s := NewMemoryStore()
	storeChunk(t, s, "q1", "Net profit was AED 5,120 million.", 2022, temporal.Q1, "income_statement")
	storeChunk(t, s, "q3", "Net profit was AED 3,900 million.", 2022, temporal.Q3, "income_statement")
	storeChunk(t, s, "y23", "Net profit was AED 4,200 million.", 2023, temporal.Q1, "income_statement")

	got, err := s.SearchChunks(context.Background(), "net profit",
		SearchFilters{Year: 2022, Quarter: temporal.Q3}, 10)
	if err != nil {
		t.Fatalf("SearchChunks failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "q3" {
		t.Errorf("Expected only q3 to pass filters, got %+v", got)
	}

	got, err = s.SearchChunks(context.Background(), "net profit",
		SearchFilters{Section: "INCOME_STATEMENT"}, 10)
	if err != nil {
		t.Fatalf("SearchChunks failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Section filter should be case-insensitive, got %d hits", len(got))
	}
}

func TestSearchLimitAndNoOverlap(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < 5; i++ {
		storeChunk(t, s, fmt.Sprintf("c%d", i), "Net interest income of AED 3,800 million.", 2022, temporal.Q2, "")
	}

	got, err := s.SearchChunks(context.Background(), "interest income", SearchFilters{}, 2)
	if err != nil {
		t.Fatalf("SearchChunks failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected limit of 2 respected, got %d", len(got))
	}
	if got[0].ID != "c0" || got[1].ID != "c1" {
		t.Errorf("Rank ties should keep insertion order, got %s, %s", got[0].ID, got[1].ID)
	}

	got, err = s.SearchChunks(context.Background(), "zebra", SearchFilters{}, 10)
	if err != nil {
		t.Fatalf("SearchChunks failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no hits without term overlap, got %d", len(got))
	}
}

func TestListByPeriod(t *testing.T) {
	s := NewMemoryStore()
	storeChunk(t, s, "a", "first", 2022, temporal.Q1, "")
	storeChunk(t, s, "b", "second", 2022, temporal.Q1, "")
	storeChunk(t, s, "c", "third", 2022, temporal.Annual, "")

	got, err := s.ListByPeriod(context.Background(), "2022_Q1")
	if err != nil {
		t.Fatalf("ListByPeriod failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Expected chunks a, b in insertion order, got %+v", got)
	}

	annual, err := s.ListByPeriod(context.Background(), "2022_Annual")
	if err != nil {
		t.Fatalf("ListByPeriod failed: %v", err)
	}
	if len(annual) != 1 || annual[0].ID != "c" {
		t.Errorf("Expected annual chunk c, got %+v", annual)
	}
}
