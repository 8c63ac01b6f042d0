// ABOUTME: KV-backed corpus store with swap-pointer generation replacement
// ABOUTME: Readers resolve a pointer key and never observe a partial corpus
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/kv"
	"github.com/HelloJC24/BNGCIA/internal/models"
)

const (
	currentKey = kv.CorpusPrefix + "current"
	genPrefix  = kv.CorpusPrefix + "gen:"
)

// KV is the slice of the key-value client the corpus store needs.
type KV interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
}

// KVStore persists corpus generations in the key-value store. A rebuild
// writes a complete new generation, verifies its record count, and only then
// swaps the current pointer, so a concurrent Load sees either the old or the
// new corpus in full.
type KVStore struct {
	kv     KV
	logger *zap.Logger
}

// NewKVStore creates a corpus store over the given KV client.
func NewKVStore(client KV, logger *zap.Logger) *KVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVStore{kv: client, logger: logger}
}

func headerKey(gen string) string {
	return genPrefix + gen + ":header"
}

func chunkKey(gen string, n int) string {
	// Zero-padded so lexical key order is corpus order
	return fmt.Sprintf("%s%s:chunk:%08d", genPrefix, gen, n)
}

func chunkPrefix(gen string) string {
	return genPrefix + gen + ":chunk:"
}

// Save writes a new corpus generation and swaps the current pointer to it.
// The previous generation is deleted only after the swap.
func (s *KVStore) Save(corpus *models.Corpus) error {
	gen := uuid.New().String()

	data, err := json.Marshal(corpus.Header)
	if err != nil {
		return fmt.Errorf("marshaling header: %w", err)
	}
	if err := s.kv.Set(headerKey(gen), data); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, ch := range corpus.Chunks {
		data, err := json.Marshal(ch)
		if err != nil {
			return fmt.Errorf("marshaling chunk %s: %w", ch.ID, err)
		}
		if err := s.kv.Set(chunkKey(gen, i), data); err != nil {
			return fmt.Errorf("writing chunk %s: %w", ch.ID, err)
		}
		if (i+1)%50 == 0 {
			s.logger.Info("saving corpus", zap.Int("written", i+1), zap.Int("total", len(corpus.Chunks)))
		}
	}

	// Verify record count before the new generation becomes visible
	keys, err := s.kv.ListKeys(chunkPrefix(gen))
	if err != nil {
		return fmt.Errorf("verifying written corpus: %w", err)
	}
	if len(keys) != len(corpus.Chunks) {
		s.deleteGeneration(gen)
		return fmt.Errorf("corpus write verification failed: wrote %d records, found %d", len(corpus.Chunks), len(keys))
	}

	prev, err := s.currentGeneration()
	if err != nil && !errors.Is(err, ErrCorpusNotFound) {
		return err
	}

	if err := s.kv.Set(currentKey, []byte(gen)); err != nil {
		return fmt.Errorf("swapping corpus pointer: %w", err)
	}

	if prev != "" && prev != gen {
		s.deleteGeneration(prev)
	}

	s.logger.Info("corpus saved",
		zap.String("generation", gen),
		zap.Int("chunks", len(corpus.Chunks)),
		zap.Int("dimension", corpus.Header.EmbeddingDim))
	return nil
}

// Load reads the current corpus generation in full. A missing pointer means
// ErrCorpusNotFound; any invalid record fails the whole load.
func (s *KVStore) Load() (*models.Corpus, error) {
	gen, err := s.currentGeneration()
	if err != nil {
		return nil, err
	}

	corpus := &models.Corpus{}
	data, err := s.kv.Get(headerKey(gen))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, &CorruptError{Reason: "generation header missing"}
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := json.Unmarshal(data, &corpus.Header); err != nil {
		return nil, &CorruptError{Reason: "unreadable header: " + err.Error()}
	}

	keys, err := s.kv.ListKeys(chunkPrefix(gen))
	if err != nil {
		return nil, fmt.Errorf("listing corpus records: %w", err)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data, err := s.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("reading corpus record %s: %w", key, err)
		}
		var ch models.Chunk
		if err := json.Unmarshal(data, &ch); err != nil {
			return nil, &CorruptError{Reason: fmt.Sprintf("unreadable record %s: %v", key, err)}
		}
		corpus.Chunks = append(corpus.Chunks, ch)
	}

	if err := validate(corpus); err != nil {
		return nil, err
	}

	s.logger.Info("corpus loaded", zap.String("generation", gen), zap.Int("chunks", corpus.Len()))
	return corpus, nil
}

// Clear removes the current corpus and its pointer.
func (s *KVStore) Clear() error {
	gen, err := s.currentGeneration()
	if errors.Is(err, ErrCorpusNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.kv.Delete(currentKey); err != nil {
		return err
	}
	s.deleteGeneration(gen)
	return nil
}

func (s *KVStore) currentGeneration() (string, error) {
	data, err := s.kv.Get(currentKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", ErrCorpusNotFound
		}
		return "", fmt.Errorf("reading corpus pointer: %w", err)
	}
	gen := strings.TrimSpace(string(data))
	if gen == "" {
		return "", ErrCorpusNotFound
	}
	return gen, nil
}

// deleteGeneration removes all keys of one generation. Best-effort: an
// orphaned key is unreachable once the pointer moved on.
func (s *KVStore) deleteGeneration(gen string) {
	keys, err := s.kv.ListKeys(genPrefix + gen + ":")
	if err != nil {
		s.logger.Warn("listing old generation keys", zap.String("generation", gen), zap.Error(err))
		return
	}
	for _, key := range keys {
		if err := s.kv.Delete(key); err != nil {
			s.logger.Warn("deleting old generation key", zap.String("key", key), zap.Error(err))
		}
	}
}
