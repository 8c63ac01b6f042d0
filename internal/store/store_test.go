// ABOUTME: Tests for corpus persistence, validation, and migration
// ABOUTME: Uses an in-memory fake KV client and temp-dir file stores
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/kv"
	"github.com/HelloJC24/BNGCIA/internal/models"
)

// fakeKV is an in-memory stand-in for the charm KV client.
type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	f.data[key] = cp
	return nil
}

func (f *fakeKV) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", kv.ErrNotFound, key)
	}
	return v, nil
}

func (f *fakeKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) ListKeys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func testCorpus(n, dim int) *models.Corpus {
	c := &models.Corpus{
		Header: models.CorpusHeader{
			ChunkSize:    800,
			Overlap:      150,
			EmbeddingDim: dim,
			BuiltAt:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	for i := 0; i < n; i++ {
		emb := make([]float64, dim)
		for j := range emb {
			emb[j] = float64(i*dim + j)
		}
		c.Chunks = append(c.Chunks, models.Chunk{
			ID:        models.ChunkID("https://thebngc.com", i*650),
			Text:      fmt.Sprintf("Passage %d about BNGC services and offerings.", i),
			SourceURL: "https://thebngc.com",
			Position:  i,
			Embedding: emb,
		})
	}
	return c
}

func TestKVStore_RoundTrip(t *testing.T) {
	s := NewKVStore(newFakeKV(), zap.NewNop())
	want := testCorpus(7, 4)

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("loaded corpus differs from saved corpus")
	}
}

func TestKVStore_LoadWithoutCorpus(t *testing.T) {
	s := NewKVStore(newFakeKV(), zap.NewNop())

	_, err := s.Load()
	if !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("Load() error = %v, want ErrCorpusNotFound", err)
	}
}

func TestKVStore_RebuildReplacesWholesale(t *testing.T) {
	fake := newFakeKV()
	s := NewKVStore(fake, zap.NewNop())

	if err := s.Save(testCorpus(5, 4)); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	second := testCorpus(3, 4)
	if err := s.Save(second); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 3 {
		t.Errorf("chunks after rebuild = %d, want 3", got.Len())
	}

	// The old generation must be gone: pointer + header + 3 chunks remain
	keys, _ := fake.ListKeys(kv.CorpusPrefix)
	if len(keys) != 5 {
		t.Errorf("keys after rebuild = %d, want 5 (%v)", len(keys), keys)
	}
}

func TestKVStore_CorruptMissingEmbedding(t *testing.T) {
	s := NewKVStore(newFakeKV(), zap.NewNop())
	c := testCorpus(4, 4)
	c.Chunks[2].Embedding = nil

	if err := s.Save(c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err := s.Load()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Load() error = %v, want CorruptError", err)
	}
	if !strings.Contains(corrupt.Reason, "no embedding") {
		t.Errorf("Reason = %q, want missing-embedding reason", corrupt.Reason)
	}
}

func TestKVStore_CorruptDimensionMismatch(t *testing.T) {
	s := NewKVStore(newFakeKV(), zap.NewNop())
	c := testCorpus(4, 4)
	c.Chunks[3].Embedding = []float64{1, 2}

	if err := s.Save(c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err := s.Load()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Load() error = %v, want CorruptError", err)
	}
	if !strings.Contains(corrupt.Reason, "dimension") {
		t.Errorf("Reason = %q, want dimension-mismatch reason", corrupt.Reason)
	}
}

func TestKVStore_Clear(t *testing.T) {
	fake := newFakeKV()
	s := NewKVStore(fake, zap.NewNop())

	if err := s.Save(testCorpus(2, 4)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("Load() after Clear error = %v, want ErrCorpusNotFound", err)
	}
	keys, _ := fake.ListKeys(kv.CorpusPrefix)
	if len(keys) != 0 {
		t.Errorf("keys after Clear = %v, want none", keys)
	}

	// Clearing an empty store is fine
	if err := s.Clear(); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
}

func TestKVStore_OrderPreserved(t *testing.T) {
	s := NewKVStore(newFakeKV(), zap.NewNop())
	want := testCorpus(120, 3) // enough chunks to expose unpadded key ordering

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for i, ch := range got.Chunks {
		if ch.Position != i {
			t.Fatalf("chunk at index %d has position %d; corpus order lost", i, ch.Position)
		}
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	s := NewFileStore(path, zap.NewNop())
	want := testCorpus(5, 6)

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loaded corpus differs from saved corpus")
	}
}

func TestFileStore_NotFound(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	if _, err := s.Load(); !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("Load() error = %v, want ErrCorpusNotFound", err)
	}
}

func TestFileStore_LegacyArrayFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus_local.json")

	legacy := `[{"id":"abc","text":"BNGC offers consulting.","url":"https://thebngc.com","position":0,"embedding":[0.1,0.2,0.3]}]`
	if err := writeFile(path, legacy); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, zap.NewNop())
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("chunks = %d, want 1", got.Len())
	}
	if got.Header.EmbeddingDim != 3 {
		t.Errorf("synthesized EmbeddingDim = %d, want 3", got.Header.EmbeddingDim)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := writeFile(path, "{not json"); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, zap.NewNop())
	var corrupt *CorruptError
	if _, err := s.Load(); !errors.As(err, &corrupt) {
		t.Errorf("Load() error = %v, want CorruptError", err)
	}
}

func TestMigrate_FileToKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	src := NewFileStore(path, zap.NewNop())
	if err := src.Save(testCorpus(4, 4)); err != nil {
		t.Fatal(err)
	}

	dst := NewKVStore(newFakeKV(), zap.NewNop())
	n, err := Migrate(src, dst)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if n != 4 {
		t.Errorf("migrated = %d, want 4", n)
	}
	got, err := dst.Load()
	if err != nil {
		t.Fatalf("Load() after migration error = %v", err)
	}
	if got.Len() != 4 {
		t.Errorf("chunks = %d, want 4", got.Len())
	}
}

func TestMigrate_NoSource(t *testing.T) {
	src := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	dst := NewKVStore(newFakeKV(), zap.NewNop())

	if _, err := Migrate(src, dst); !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("Migrate() error = %v, want ErrCorpusNotFound", err)
	}
}

func TestStatsFor(t *testing.T) {
	c := testCorpus(4, 4)
	c.Chunks[3].SourceURL = "https://uptura-tech.com"

	stats := StatsFor(c)
	if stats.Chunks != 4 {
		t.Errorf("Chunks = %d, want 4", stats.Chunks)
	}
	if stats.UniqueURLs != 2 {
		t.Errorf("UniqueURLs = %d, want 2", stats.UniqueURLs)
	}
	if stats.AvgChunkChars == 0 || stats.TotalChars == 0 {
		t.Error("character stats should be non-zero")
	}
	if len(stats.URLs) != 2 || stats.URLs[0] != "https://thebngc.com" {
		t.Errorf("URLs = %v", stats.URLs)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
