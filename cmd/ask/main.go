package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"agentic_finqa/pkg/core/agent"
	"agentic_finqa/pkg/core/ingest"
	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/core/pipeline"
	"agentic_finqa/pkg/core/retrieval"
	"agentic_finqa/pkg/core/store"
	"agentic_finqa/pkg/core/temporal"
	"agentic_finqa/pkg/models"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	filePath := flag.String("file", "", "HTML statement to ingest into an in-memory store before answering")
	bank := flag.String("bank", "FAB", "bank name for the ingested statement")
	year := flag.Int("year", 0, "reporting year for the ingested statement")
	quarter := flag.String("quarter", "Q1", "reporting quarter (Q1-Q4 or Annual)")
	docType := flag.String("type", "financial_statement", "document type")
	flag.Parse()

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if question == "" {
		log.Fatal(`Usage: ask [-file statement.html -year 2022 -quarter Q1] "your question"`)
	}

	// Diagnostics go to stderr so the answer on stdout stays clean.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	catalog := metrics.Default()

	ctx := context.Background()
	var chunkStore retrieval.ChunkStore
	switch {
	case store.Available():
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		defer store.Close()
		repo := store.NewChunkRepo()
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Schema setup failed: %v", err)
		}
		chunkStore = repo
	case *filePath != "":
		meta := models.DocumentMetadata{
			Bank:         *bank,
			Year:         *year,
			Quarter:      temporal.Quarter(*quarter),
			DocumentType: models.DocumentType(*docType),
			FilePath:     *filePath,
		}
		f, err := os.Open(*filePath)
		if err != nil {
			log.Fatalf("Cannot open %s: %v", *filePath, err)
		}
		chunks, err := ingest.NewParser(catalog, logger).ParseHTML(f, meta)
		f.Close()
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		mem := retrieval.NewMemoryStore()
		for _, chunk := range chunks {
			if err := mem.AddChunk(ctx, chunk); err != nil {
				log.Fatalf("Store write failed: %v", err)
			}
		}
		fmt.Printf("📂 Ingested %d chunks from %s\n", len(chunks), *filePath)
		chunkStore = mem
	default:
		log.Fatal("No data source: set DATABASE_URL or pass -file with an HTML statement.")
	}

	orchestrator := pipeline.NewOrchestrator(chunkStore, catalog, agentMgr, logger)

	fmt.Printf("🔎 %s\n\n", question)
	result, err := orchestrator.ProcessQuery(ctx, question)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Println(result.Answer)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Query type:   %s\n", result.QueryType)
	fmt.Printf("Data points:  %d   Calculations: %d\n", len(result.DataPoints), len(result.Calculations))
	fmt.Printf("Confidence:   %.2f  (approved: %v)\n", result.Confidence, result.Review.Approved)
	for _, warn := range result.Review.Warnings {
		fmt.Printf("  ⚠ %s\n", warn)
	}
	fmt.Printf("Elapsed:      %d ms\n", result.ElapsedMS)
}
