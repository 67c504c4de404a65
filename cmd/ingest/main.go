package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"agentic_finqa/pkg/core/ingest"
	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/core/store"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	filePath := flag.String("file", "", "HTML statement to ingest (required)")
	bank := flag.String("bank", "FAB", "bank name")
	year := flag.Int("year", 0, "reporting year (required)")
	quarter := flag.String("quarter", "Q1", "reporting quarter (Q1-Q4 or Annual)")
	docType := flag.String("type", "financial_statement", "document type")
	currency := flag.String("currency", "", "reporting currency (default AED)")
	units := flag.String("units", "", "reporting units (default millions)")
	pages := flag.Int("pages", 0, "page count, if known")
	flag.Parse()

	if *filePath == "" || *year == 0 {
		log.Fatal("Usage: ingest -file statement.html -year 2022 [-quarter Q1] [-type financial_statement]")
	}
	if !store.Available() {
		log.Fatal("Error: DATABASE_URL is not set.")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer store.Close()
	repo := store.NewChunkRepo()
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	meta := models.DocumentMetadata{
		Bank:         *bank,
		Year:         *year,
		Quarter:      temporal.Quarter(*quarter),
		DocumentType: models.DocumentType(*docType),
		FilePath:     *filePath,
		Currency:     *currency,
		Units:        *units,
		Pages:        *pages,
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Cannot open %s: %v", *filePath, err)
	}
	defer f.Close()

	fmt.Printf("📂 Ingesting %s (%s %d %s)...\n", *filePath, *bank, *year, *quarter)
	parser := ingest.NewParser(metrics.Default(), logger)
	chunks, err := parser.ParseHTML(f, meta)
	if err != nil {
		log.Fatalf("Parsing failed: %v", err)
	}

	tableHits := 0
	for _, chunk := range chunks {
		if err := repo.AddChunk(ctx, chunk); err != nil {
			log.Fatalf("Store write failed for chunk %s: %v", chunk.ID, err)
		}
		tableHits += len(chunk.TableMetrics)
	}

	fmt.Printf("Stored %d chunks (%d table metrics) for period %s.\n", len(chunks), tableHits, meta.WithDefaults().Period())
	fmt.Println("[Done] Ingestion complete.")
}
