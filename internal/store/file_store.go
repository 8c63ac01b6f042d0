// ABOUTME: Flat-file JSON corpus store used for local builds and migration
// ABOUTME: Writes are atomic via temp file plus rename
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/models"
)

// FileStore persists the corpus as a single JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed corpus store at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Save replaces the corpus file in one rename, so readers see either the
// old file or the complete new one.
func (s *FileStore) Save(corpus *models.Corpus) error {
	data, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling corpus: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("creating temp corpus file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing corpus file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing corpus file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing corpus file: %w", err)
	}

	s.logger.Info("corpus saved", zap.String("path", s.path), zap.Int("chunks", corpus.Len()))
	return nil
}

// Load reads and validates the corpus file. It also accepts the legacy
// format of a bare chunk array without a header, synthesizing the header
// from the first record so old corpus files can be migrated.
func (s *FileStore) Load() (*models.Corpus, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCorpusNotFound
		}
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	corpus := &models.Corpus{}
	if err := json.Unmarshal(data, corpus); err != nil {
		var legacy []models.Chunk
		if legacyErr := json.Unmarshal(data, &legacy); legacyErr != nil {
			return nil, &CorruptError{Reason: "unreadable corpus file: " + err.Error()}
		}
		corpus.Chunks = legacy
		if len(legacy) > 0 {
			corpus.Header = models.CorpusHeader{
				EmbeddingDim: len(legacy[0].Embedding),
				BuiltAt:      time.Now().UTC(),
			}
		}
	}

	if err := validate(corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}

// Clear removes the corpus file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing corpus file: %w", err)
	}
	return nil
}
