// ABOUTME: Retriever: embeds a query, searches the index, and assembles context
// ABOUTME: Applies top-k, similarity threshold, and the context character budget
package retriever

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/index"
	"github.com/HelloJC24/BNGCIA/internal/llm"
	"github.com/HelloJC24/BNGCIA/internal/models"
)

// ErrNoCorpus indicates retrieval was attempted before any corpus was
// built. Distinct from a query that simply matches nothing.
var ErrNoCorpus = errors.New("no corpus available")

// Options control one retrieval pass.
type Options struct {
	TopK            int
	Threshold       float64
	MaxContextChars int
}

// DefaultOptions returns the standard retrieval parameters.
func DefaultOptions() Options {
	return Options{
		TopK:            5,
		Threshold:       0.3,
		MaxContextChars: 4000,
	}
}

// Result is the outcome of one retrieval pass. Pieces holds the formatted
// source blocks in rank order; Context is the blocks joined for the prompt.
type Result struct {
	Chunks    []models.SearchResult
	Citations []models.Citation
	Pieces    []string
	Context   string
}

// Empty reports whether retrieval found nothing above the threshold.
func (r *Result) Empty() bool {
	return r == nil || len(r.Chunks) == 0
}

// Retriever embeds queries and searches a vector index.
type Retriever struct {
	embedder llm.Embedder
	logger   *zap.Logger
}

// New creates a retriever over the given embedder.
func New(embedder llm.Embedder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, logger: logger}
}

// Retrieve embeds the query, searches ix, and assembles context within the
// character budget. Chunks are kept or dropped whole, lowest score first;
// the top-ranked chunk is always kept even when it alone exceeds the budget.
func (r *Retriever) Retrieve(ix *index.Index, query string, opts Options) (*Result, error) {
	if ix.Len() == 0 {
		return nil, ErrNoCorpus
	}

	vec, err := r.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches := ix.Search(vec, opts.TopK, opts.Threshold)
	if len(matches) == 0 {
		r.logger.Debug("no chunks above threshold",
			zap.Float64("threshold", opts.Threshold))
		return &Result{}, nil
	}

	kept := fitBudget(matches, opts.MaxContextChars)

	result := &Result{Chunks: kept}
	for i, m := range kept {
		result.Pieces = append(result.Pieces, formatPiece(i+1, m))
		result.Citations = append(result.Citations, models.Citation{
			URL:   m.Chunk.SourceURL,
			Score: m.Score,
		})
	}
	result.Context = strings.Join(result.Pieces, "\n---\n")

	r.logger.Debug("retrieved context",
		zap.Int("matches", len(matches)),
		zap.Int("kept", len(kept)),
		zap.Float64("top_score", kept[0].Score))
	return result, nil
}

// fitBudget drops the lowest-scored chunks until the total text fits the
// character budget. The first chunk is never dropped.
func fitBudget(matches []models.SearchResult, budget int) []models.SearchResult {
	if budget <= 0 {
		return matches
	}

	kept := matches
	total := 0
	for _, m := range kept {
		total += len(m.Chunk.Text)
	}
	for total > budget && len(kept) > 1 {
		last := kept[len(kept)-1]
		total -= len(last.Chunk.Text)
		kept = kept[:len(kept)-1]
	}
	return kept
}

func formatPiece(rank int, m models.SearchResult) string {
	return fmt.Sprintf("[Source %d: %s (relevance: %.2f)]\n%s\n",
		rank, m.Chunk.SourceURL, m.Score, m.Chunk.Text)
}
