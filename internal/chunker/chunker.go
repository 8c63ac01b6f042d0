// ABOUTME: Chunker splits cleaned page text into overlapping passages
// ABOUTME: Prefers sentence boundaries near the window edge over hard cuts
package chunker

import (
	"regexp"
	"strings"

	"github.com/HelloJC24/BNGCIA/internal/models"
)

// DefaultChunkSize is the default window size in characters.
const DefaultChunkSize = 800

// DefaultOverlap is the default number of overlapping characters between
// consecutive windows.
const DefaultOverlap = 150

// DefaultMinChunkChars is the minimum trimmed chunk length; shorter
// fragments are dropped.
const DefaultMinChunkChars = 50

var whitespaceRE = regexp.MustCompile(`\s+`)

// Chunker slides a character window over document text, cutting at the
// nearest sentence boundary within the tail of each window. Split is a pure
// function of its inputs; a Chunker is safe for concurrent use.
type Chunker struct {
	chunkSize     int
	overlap       int
	minChunkChars int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinChunkChars sets the minimum trimmed chunk length.
func WithMinChunkChars(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minChunkChars = n
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:     DefaultChunkSize,
		overlap:       DefaultOverlap,
		minChunkChars: DefaultMinChunkChars,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for the window to advance
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured window size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks document text for the given source URL. Embeddings are left
// unset. Documents shorter than one window yield a single chunk, subject to
// the minimum-length filter.
func (c *Chunker) Split(text, url string) []models.Chunk {
	clean := strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
	if clean == "" {
		return nil
	}

	var chunks []models.Chunk
	length := len(clean)
	// Sentence boundaries are only honored within the last 20% of a window
	lookback := c.chunkSize / 5

	start := 0
	for start < length {
		end := start + c.chunkSize
		if end >= length {
			end = length
		} else if cut := lastSentenceEnd(clean, end-lookback, end); cut > start {
			end = cut
		}

		piece := strings.TrimSpace(clean[start:end])
		if len(piece) >= c.minChunkChars {
			chunks = append(chunks, models.Chunk{
				ID:        models.ChunkID(url, start),
				Text:      piece,
				SourceURL: url,
				Position:  len(chunks),
			})
		}

		if end >= length {
			break
		}
		next := end - c.overlap
		if next <= start {
			// Overlap would stall the window; advance past the cut instead
			next = end
		}
		start = next
	}

	return chunks
}

// lastSentenceEnd returns the index just past the last sentence-ending
// punctuation in s[from:to], or -1 if none is found.
func lastSentenceEnd(s string, from, to int) int {
	if from < 0 {
		from = 0
	}
	for i := to - 1; i >= from; i-- {
		switch s[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return -1
}
