// ABOUTME: In-memory vector index with brute-force cosine similarity search
// ABOUTME: Results are deterministic: stable ordering by score, corpus order on ties
package index

import (
	"math"
	"sort"

	"github.com/HelloJC24/BNGCIA/internal/models"
)

// Index holds embedded chunks in memory for similarity search. It is
// immutable after Build, so concurrent searches need no locking.
type Index struct {
	chunks []models.Chunk
	dim    int
}

// Build creates an index over the corpus. Chunk order is preserved so that
// ties in score resolve to corpus order.
func Build(corpus *models.Corpus) *Index {
	ix := &Index{}
	if corpus == nil || len(corpus.Chunks) == 0 {
		return ix
	}
	ix.chunks = make([]models.Chunk, len(corpus.Chunks))
	copy(ix.chunks, corpus.Chunks)
	ix.dim = corpus.Header.EmbeddingDim
	if ix.dim == 0 {
		ix.dim = len(ix.chunks[0].Embedding)
	}
	return ix
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.chunks)
}

// Dimension returns the embedding dimension of the indexed chunks.
func (ix *Index) Dimension() int {
	if ix == nil {
		return 0
	}
	return ix.dim
}

// Search scores every chunk against the query embedding and returns at most
// k results with score >= threshold, sorted by descending score. An empty
// index or a query matching nothing returns an empty slice, never an error.
func (ix *Index) Search(query []float64, k int, threshold float64) []models.SearchResult {
	if ix == nil || len(ix.chunks) == 0 || k <= 0 {
		return []models.SearchResult{}
	}

	results := make([]models.SearchResult, 0, len(ix.chunks))
	for _, ch := range ix.chunks {
		score := Cosine(query, ch.Embedding)
		if score < threshold {
			continue
		}
		results = append(results, models.SearchResult{Chunk: ch, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Cosine computes cosine similarity between two vectors. Mismatched lengths
// or a zero-norm vector score 0.0 rather than erroring, so a degenerate
// record can never poison a search.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
