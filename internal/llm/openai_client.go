// ABOUTME: OpenAI client for embeddings and answer generation with retry logic
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for answers (configurable)
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/HelloJC24/BNGCIA/internal/util"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3

	// embedBatchSize caps how many texts one embeddings request carries
	embedBatchSize = 100

	requestTimeout = 30 * time.Second
)

// ProviderError wraps a failure from the model provider so callers can
// distinguish provider trouble from an empty retrieval.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// BatchEmbedder embeds many texts at once, keyed by caller-chosen IDs.
type BatchEmbedder interface {
	EmbedBatch(items map[string]string) (map[string][]float64, error)
}

// Generator produces a chat completion from a system and user prompt.
type Generator interface {
	Generate(system, user string) (string, error)
}

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	maxRetries     int
	retryDelay     time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(config.APIKey)

	return &OpenAIClient{
		client:         client,
		chatModel:      config.ChatModel,
		embeddingModel: config.EmbeddingModel,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (c *OpenAIClient) Embed(text string) ([]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		vec := toFloat64(resp.Data[0].Embedding)
		cancel()
		return vec, nil
	}

	return nil, &ProviderError{Op: "embed", Err: fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)}
}

// EmbedBatch embeds all items in batches, returning vectors keyed by the
// caller's IDs. One failed batch fails the whole call: a corpus must never
// be built with holes.
func (c *OpenAIClient) EmbedBatch(items map[string]string) (map[string][]float64, error) {
	if len(items) == 0 {
		return map[string][]float64{}, nil
	}

	ids := make([]string, 0, len(items))
	texts := make([]string, 0, len(items))
	for id, text := range items {
		ids = append(ids, id)
		texts = append(texts, text)
	}

	out := make(map[string][]float64, len(items))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := c.embedBatch(texts[start:end])
		if err != nil {
			return nil, err
		}
		for i, vec := range vectors {
			out[ids[start+i]] = vec
		}
	}

	return out, nil
}

func (c *OpenAIClient) embedBatch(texts []string) ([][]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) != len(texts) {
			cancel()
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d inputs", attempt+1, len(resp.Data), len(texts))
			continue
		}

		// The API may return data out of order; re-associate by index
		vectors := make([][]float64, len(texts))
		for _, d := range resp.Data {
			vectors[d.Index] = toFloat64(d.Embedding)
		}

		cancel()
		return vectors, nil
	}

	return nil, &ProviderError{Op: "embed batch", Err: fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)}
}

// Generate produces a chat completion for the given prompts.
func (c *OpenAIClient) Generate(system, user string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: user,
				},
			},
			Temperature: 0.1,
			MaxTokens:   1000,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Choices) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		content := resp.Choices[0].Message.Content
		cancel()
		return content, nil
	}

	return "", &ProviderError{Op: "generate", Err: fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)}
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
