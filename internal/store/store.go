// ABOUTME: Corpus Store Adapter contracts, validation, and migration
// ABOUTME: A corpus loads all-or-nothing; corruption fails the whole load
package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/HelloJC24/BNGCIA/internal/models"
)

// ErrCorpusNotFound indicates no corpus has been built yet. Callers must
// treat it differently from an empty retrieval result.
var ErrCorpusNotFound = errors.New("corpus not found")

// CorruptError indicates the stored corpus failed load-time validation.
// No partial corpus is ever served.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return "corpus corrupt: " + e.Reason
}

// CorpusStore persists one corpus generation at a time. Save fully replaces
// the prior corpus or fails without affecting it.
type CorpusStore interface {
	Save(corpus *models.Corpus) error
	Load() (*models.Corpus, error)
	Clear() error
}

// Stats summarizes a stored corpus.
type Stats struct {
	Chunks        int       `json:"total_documents"`
	UniqueURLs    int       `json:"unique_urls"`
	TotalChars    int       `json:"total_characters"`
	AvgChunkChars int       `json:"average_chunk_size"`
	URLs          []string  `json:"urls"`
	BuiltAt       time.Time `json:"built_at"`
}

// StatsFor computes summary statistics for a corpus.
func StatsFor(corpus *models.Corpus) *Stats {
	s := &Stats{BuiltAt: corpus.Header.BuiltAt}

	urls := make(map[string]bool)
	for _, ch := range corpus.Chunks {
		urls[ch.SourceURL] = true
		s.TotalChars += len(ch.Text)
	}
	s.Chunks = len(corpus.Chunks)
	s.UniqueURLs = len(urls)
	if s.Chunks > 0 {
		s.AvgChunkChars = s.TotalChars / s.Chunks
	}
	for u := range urls {
		s.URLs = append(s.URLs, u)
	}
	sort.Strings(s.URLs)
	return s
}

// validate enforces the all-or-nothing corpus contract: every chunk carries
// an embedding and all embeddings share the dimension of the first record.
func validate(corpus *models.Corpus) error {
	if len(corpus.Chunks) == 0 {
		return nil
	}

	dim := len(corpus.Chunks[0].Embedding)
	if dim == 0 {
		return &CorruptError{Reason: fmt.Sprintf("chunk %s has no embedding", corpus.Chunks[0].ID)}
	}
	for _, ch := range corpus.Chunks {
		if len(ch.Embedding) == 0 {
			return &CorruptError{Reason: fmt.Sprintf("chunk %s has no embedding", ch.ID)}
		}
		if len(ch.Embedding) != dim {
			return &CorruptError{
				Reason: fmt.Sprintf("chunk %s dimension %d does not match first record dimension %d",
					ch.ID, len(ch.Embedding), dim),
			}
		}
	}
	return nil
}

// Migrate copies the corpus from src into dst and returns the number of
// chunks moved. Used to move a flat-file corpus into the KV store.
func Migrate(src, dst CorpusStore) (int, error) {
	corpus, err := src.Load()
	if err != nil {
		return 0, fmt.Errorf("loading source corpus: %w", err)
	}
	if err := dst.Save(corpus); err != nil {
		return 0, fmt.Errorf("saving corpus to destination: %w", err)
	}
	return corpus.Len(), nil
}
