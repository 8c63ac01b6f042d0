// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Opens the KV client and assembles the service and corpus builder
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/chunker"
	"github.com/HelloJC24/BNGCIA/internal/config"
	"github.com/HelloJC24/BNGCIA/internal/conversation"
	"github.com/HelloJC24/BNGCIA/internal/corpus"
	"github.com/HelloJC24/BNGCIA/internal/kv"
	"github.com/HelloJC24/BNGCIA/internal/llm"
	"github.com/HelloJC24/BNGCIA/internal/rag"
	"github.com/HelloJC24/BNGCIA/internal/retriever"
	"github.com/HelloJC24/BNGCIA/internal/store"
)

// app bundles the wired collaborators a command needs.
type app struct {
	cfg        *config.Config
	kv         *kv.Client
	store      store.CorpusStore
	svc        *rag.Service
	builder    *corpus.Builder
	chunker    *chunker.Chunker
	embedBatch llm.BatchEmbedder
	logger     *zap.Logger
}

// builderFor returns a corpus builder writing to an alternate store.
func (a *app) builderFor(st store.CorpusStore) *corpus.Builder {
	return corpus.NewBuilder(a.chunker, a.embedBatch, st, a.logger)
}

// openApp loads configuration, opens the KV client, and wires the service.
// needsLLM gates the OpenAI client so offline commands work without a key.
func openApp(needsLLM bool) (*app, error) {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger()

	client, err := kv.Open(&kv.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	a := &app{
		cfg:    cfg,
		kv:     client,
		store:  store.NewKVStore(client, logger),
		logger: logger,
	}

	var embedder llm.Embedder
	var batchEmbedder llm.BatchEmbedder
	var generator llm.Generator
	if needsLLM {
		if cfg.OpenAIKey == "" {
			client.Close()
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		oc, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:         cfg.OpenAIKey,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: openaiEmbeddingModel(cfg.EmbeddingModel),
			MaxRetries:     cfg.MaxRetries,
			RetryDelay:     cfg.RetryDelay,
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("initializing OpenAI client: %w", err)
		}
		embedder = oc
		batchEmbedder = oc
		generator = oc
	}

	history := conversation.NewHistoryStore(client, cfg.MaxStoredTurns, cfg.HistoryRetention, logger)

	a.svc = rag.New(rag.Config{
		Store:      a.store,
		History:    history,
		Classifier: conversation.NewClassifier(),
		Retriever:  retriever.New(embedder, logger),
		Generator:  generator,
		Contexts:   conversation.NewContextBuilder(cfg.MaxHistoryTurns, cfg.MaxContextChars),
		Options: retriever.Options{
			TopK:            cfg.TopK,
			Threshold:       cfg.Threshold,
			MaxContextChars: cfg.MaxContextChars,
		},
		Logger: logger,
	})

	a.chunker = chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
		chunker.WithMinChunkChars(cfg.MinChunkChars),
	)
	a.embedBatch = batchEmbedder
	a.builder = corpus.NewBuilder(a.chunker, batchEmbedder, a.store, logger)

	return a, nil
}

func openaiEmbeddingModel(name string) openai.EmbeddingModel {
	if name == "" {
		return llm.DefaultEmbeddingModel
	}
	return openai.EmbeddingModel(name)
}

// Close releases the KV client.
func (a *app) Close() {
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}
}
