// ABOUTME: Corpus builder: chunks source pages, embeds every chunk, persists
// ABOUTME: A build is all-or-nothing; a chunk without a vector aborts it
package corpus

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/chunker"
	"github.com/HelloJC24/BNGCIA/internal/llm"
	"github.com/HelloJC24/BNGCIA/internal/models"
	"github.com/HelloJC24/BNGCIA/internal/source"
	"github.com/HelloJC24/BNGCIA/internal/store"
)

// Builder turns source pages into a stored, fully embedded corpus.
type Builder struct {
	chunker  *chunker.Chunker
	embedder llm.BatchEmbedder
	store    store.CorpusStore
	logger   *zap.Logger
}

// NewBuilder creates a corpus builder.
func NewBuilder(ch *chunker.Chunker, embedder llm.BatchEmbedder, st store.CorpusStore, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{chunker: ch, embedder: embedder, store: st, logger: logger}
}

// Build chunks every page from src, embeds all chunks, and saves the
// resulting corpus. Any embedding failure aborts the build: a chunk is
// never stored with a missing or placeholder vector.
func (b *Builder) Build(src source.Source) (*models.Corpus, error) {
	pages, err := src.Pages()
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}

	var chunks []models.Chunk
	for _, page := range pages {
		pieces := b.chunker.Split(page.Text, page.URL)
		b.logger.Debug("chunked page", zap.String("url", page.URL), zap.Int("chunks", len(pieces)))
		chunks = append(chunks, pieces...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced from %d pages", len(pages))
	}
	// Positions restart per page; renumber into corpus order
	for i := range chunks {
		chunks[i].Position = i
	}

	b.logger.Info("embedding corpus", zap.Int("chunks", len(chunks)))
	items := make(map[string]string, len(chunks))
	for _, ch := range chunks {
		items[ch.ID] = ch.Text
	}
	vectors, err := b.embedder.EmbedBatch(items)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	for i := range chunks {
		vec, ok := vectors[chunks[i].ID]
		if !ok || len(vec) == 0 {
			return nil, fmt.Errorf("no embedding returned for chunk %s", chunks[i].ID)
		}
		chunks[i].Embedding = vec
	}

	c := &models.Corpus{
		Header: models.CorpusHeader{
			ChunkSize:    b.chunker.ChunkSize(),
			Overlap:      b.chunker.Overlap(),
			EmbeddingDim: len(chunks[0].Embedding),
			BuiltAt:      time.Now().UTC(),
		},
		Chunks: chunks,
	}

	if err := b.store.Save(c); err != nil {
		return nil, fmt.Errorf("saving corpus: %w", err)
	}

	b.logger.Info("corpus built",
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
		zap.Int("dimension", c.Header.EmbeddingDim))
	return c, nil
}
