// ABOUTME: Corpus is an immutable generation of embedded chunks
// ABOUTME: Header records the chunking configuration the generation was built with
package models

import "time"

// CorpusHeader describes how a corpus generation was produced. All chunks in
// one generation share the header's embedding dimension.
type CorpusHeader struct {
	ChunkSize    int       `json:"chunk_size"`
	Overlap      int       `json:"overlap"`
	EmbeddingDim int       `json:"embedding_dim"`
	BuiltAt      time.Time `json:"built_at"`
}

// Corpus is an ordered collection of chunks built in one generation. It is
// replaced wholesale on rebuild, never mutated in place.
type Corpus struct {
	Header CorpusHeader `json:"header"`
	Chunks []Chunk      `json:"chunks"`
}

// Len returns the number of chunks in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Chunks)
}
