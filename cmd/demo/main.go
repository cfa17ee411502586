package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/carelens-health/carelens/backend/internal/util"
	"github.com/carelens-health/carelens/backend/pkg/ai"
	oai "github.com/carelens-health/carelens/backend/pkg/ai/ollama"
	gai "github.com/carelens-health/carelens/backend/pkg/ai/openai"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/engine"
	"github.com/carelens-health/carelens/backend/pkg/loader"
	csvloader "github.com/carelens-health/carelens/backend/pkg/loader/csv"
	ioloader "github.com/carelens-health/carelens/backend/pkg/loader/io"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/logger/console"
	"github.com/carelens-health/carelens/backend/pkg/store"
	"github.com/carelens-health/carelens/backend/pkg/store/base"
	pgxstore "github.com/carelens-health/carelens/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// One question per analysis intent, taken from the system's routing
// examples.
var demoQueries = []struct {
	kind     string
	question string
}{
	{"SQL Query", "How many hospitals are in California?"},
	{"Semantic Search", "What services do major medical centers offer?"},
	{"Geographic Analysis", "Show me the distribution of hospitals across states"},
	{"Data Quality Analysis", "Which facilities claim neurosurgery but might lack ICU?"},
	{"Counterfactual Simulation", "What if we add 5 dialysis centers in rural Texas?"},
	{"Hybrid Analysis", "Compare cardiology coverage across regions with accessibility scores"},
}

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	var aiClient ai.Client
	switch util.GetEnv("AI_PROVIDER") {
	case "ollama":
		ollamaClient, err := oai.NewOllamaClient(oai.NewOllamaClientParams{
			ChatModel:      util.GetEnvString("AI_MODEL", "llama3.1"),
			EmbeddingModel: util.GetEnvString("AI_EMBED_MODEL", "nomic-embed-text"),
			BaseURL:        util.GetEnv("OLLAMA_HOST"),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		aiClient = ollamaClient
	default:
		aiClient = gai.NewOpenAIClient(gai.NewOpenAIClientParams{
			ChatModel:      util.GetEnvString("AI_MODEL", "gpt-4o"),
			EmbeddingModel: util.GetEnvString("AI_EMBED_MODEL", "text-embedding-3-small"),
			ChatKey:        util.GetEnv("OPENAI_API_KEY"),
			EmbeddingKey:   util.GetEnv("OPENAI_API_KEY"),
		})
	}

	st := newStorage(ctx, aiClient)

	eng, err := engine.NewFromEnv(aiClient, st)
	if err != nil {
		logger.Fatal("Failed to build analysis engine", "err", err)
	}

	divider := strings.Repeat("=", 70)
	failures := 0
	for i, q := range demoQueries {
		fmt.Printf("\n%s\nDEMO QUERY %d: %s\n%s\n", divider, i+1, q.kind, divider)
		fmt.Printf("Question: %s\n\n", q.question)

		result, err := eng.Run(ctx, q.question)
		if err != nil {
			failures++
			logger.Error("Query failed", "question", q.question, "err", err)
			continue
		}

		fmt.Println(result.Answer)
		if len(result.Errors) > 0 {
			fmt.Printf("\nPartial failures: %s\n", strings.Join(result.Errors, "; "))
		}
	}

	fmt.Printf("\n%s\nDEMO COMPLETE\n%s\n", divider, divider)
	if failures > 0 {
		os.Exit(1)
	}
}

// newStorage connects to PostgreSQL when DATABASE_URL is set and
// otherwise seeds an in-memory store from DEMO_DATA_FILE, so the demo
// runs without any backing services.
func newStorage(ctx context.Context, aiClient ai.Client) store.Storage {
	if databaseURL := util.GetEnv("DATABASE_URL"); databaseURL != "" {
		poolConfig, err := pgxpool.ParseConfig(databaseURL)
		if err != nil {
			logger.Fatal("Unable to parse database config", "err", err)
		}
		poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}
		pgConn, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Fatal("Unable to connect to database", "err", err)
		}
		return pgxstore.NewFacilityStorage(pgConn)
	}

	dataFile := util.GetEnvString("DEMO_DATA_FILE", "data/facilities.csv")
	file := loader.DatasetFile{
		ID:     "demo",
		Path:   dataFile,
		Loader: ioloader.NewIOFileLoader(),
	}

	raw, err := file.GetBytes(ctx)
	if err != nil {
		logger.Fatal("Failed to read demo dataset", "file", dataFile, "err", err)
	}
	records, err := csvloader.ParseFacilities(raw)
	if err != nil {
		logger.Fatal("Failed to parse demo dataset", "file", dataFile, "err", err)
	}

	mem := base.NewMemoryStorage()
	if err := mem.UpsertFacilities(ctx, 1, records); err != nil {
		logger.Fatal("Failed to seed demo storage", "err", err)
	}
	logger.Info("Seeded demo storage", "facilities", len(records), "file", dataFile)

	seedEmbeddings(ctx, mem, aiClient, records)

	return mem
}

// seedEmbeddings gives the in-memory store searchable documents. Losing
// them only degrades the semantic-search question, so failures are
// logged and skipped.
func seedEmbeddings(ctx context.Context, mem *base.MemoryStorage, aiClient ai.Client, records []common.FacilityRecord) {
	documents := make([]string, len(records))
	inputs := make([][]byte, len(records))
	for i, rec := range records {
		documents[i] = store.BuildFacilityDocument(rec)
		inputs[i] = []byte(documents[i])
	}

	embeddings, err := store.GenerateEmbeddings(ctx, aiClient, inputs)
	if err != nil {
		logger.Warn("Skipping demo embeddings", "err", err)
		return
	}

	for i, rec := range records {
		if err := mem.UpdateFacilityEmbedding(ctx, rec.ID, documents[i], embeddings[i]); err != nil {
			logger.Warn("Failed to store demo embedding", "facility_id", rec.ID, "err", err)
		}
	}
	logger.Info("Embedded demo documents", "count", len(records))
}
