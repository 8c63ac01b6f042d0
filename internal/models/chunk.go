// ABOUTME: Chunk is the unit of retrievable text with provenance and embedding
// ABOUTME: Chunk IDs are derived from the source URL and character offset
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Chunk is a bounded passage of source text plus its embedding and provenance.
// Embedding is unset until the corpus build embeds the chunk.
type Chunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	SourceURL string    `json:"url"`
	Position  int       `json:"position"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// ChunkID derives a stable chunk identifier from the source URL and the
// character offset of the chunk within the cleaned document text.
func ChunkID(url string, offset int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", url, offset)))
	return hex.EncodeToString(sum[:])
}

// SearchResult is a chunk paired with its similarity score against a query.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Citation attributes a retrieved passage to its origin page. The same URL
// may appear more than once when several chunks from one page are selected.
type Citation struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}
