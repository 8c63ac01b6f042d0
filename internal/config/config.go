// ABOUTME: Centralized configuration for the BNGCIA retrieval engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the retrieval engine.
type Config struct {
	// Charm KV settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Chunking settings
	ChunkSize     int
	ChunkOverlap  int
	MinChunkChars int

	// Retrieval settings
	TopK            int
	Threshold       float64
	MaxContextChars int
	VectorDimension int

	// Conversation settings
	MaxHistoryTurns  int           // turns included in prompt context
	MaxStoredTurns   int           // turns kept per user before eviction
	HistoryRetention time.Duration // whole history expires after this
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		CharmHost:        getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:      getEnv("CHARM_DB", "bngcia"),
		AutoSync:         getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		ChatModel:        getEnv("BNGCIA_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:   getEnv("BNGCIA_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:          getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:       getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:       getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 150),
		MinChunkChars:    getEnvInt("MIN_CHUNK_CHARS", 50),
		TopK:             getEnvInt("TOP_K", 5),
		Threshold:        getEnvFloat("SIMILARITY_THRESHOLD", 0.3),
		MaxContextChars:  getEnvInt("MAX_CONTEXT_CHARS", 4000),
		VectorDimension:  getEnvInt("VECTOR_DIMENSION", 1536),
		MaxHistoryTurns:  getEnvInt("HISTORY_TURNS", 10),
		MaxStoredTurns:   getEnvInt("HISTORY_LIMIT", 50),
		HistoryRetention: getEnvDuration("HISTORY_RETENTION", 7*24*time.Hour),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be 0-1, got %f", c.Threshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be 0-%d, got %d", c.ChunkSize-1, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.MaxStoredTurns <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.MaxStoredTurns)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
