package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"agentic_finqa/pkg/api/documents"
	"agentic_finqa/pkg/api/query"
	"agentic_finqa/pkg/core/agent"
	"agentic_finqa/pkg/core/metrics"
	"agentic_finqa/pkg/core/pipeline"
	"agentic_finqa/pkg/core/retrieval"
	"agentic_finqa/pkg/core/store"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Provider routing config. Missing file falls back to defaults inside
	// NewManager, same as an empty config.
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	catalog := metrics.Default()
	if path := os.Getenv("METRICS_CONFIG"); path != "" {
		loaded, err := metrics.Load(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("metric catalog load failed, using defaults")
		} else {
			catalog = loaded
		}
	}

	ctx := context.Background()
	var chunkStore retrieval.ChunkStore
	if store.Available() {
		if err := store.InitDB(ctx); err != nil {
			logger.Fatal().Err(err).Msg("database connection failed")
		}
		defer store.Close()
		repo := store.NewChunkRepo()
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("schema setup failed")
		}
		chunkStore = repo
		logger.Info().Msg("using postgres chunk store")
	} else {
		chunkStore = retrieval.NewMemoryStore()
		logger.Info().Msg("DATABASE_URL not set, using in-memory chunk store")
	}

	orchestrator := pipeline.NewOrchestrator(chunkStore, catalog, agentMgr, logger)

	queryHandler := query.NewHandler(orchestrator, logger)
	http.HandleFunc("/api/query", queryHandler.HandleQuery)
	http.HandleFunc("/api/health", queryHandler.HandleHealth)
	http.HandleFunc("/api/capabilities", queryHandler.HandleCapabilities)

	documents.Init(chunkStore, catalog, logger)
	http.HandleFunc("/api/documents", documents.HandleUpload)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - POST /api/query")
	fmt.Println("  - POST /api/documents")
	fmt.Println("  - GET  /api/health")
	fmt.Println("  - GET  /api/capabilities")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
