// ABOUTME: Tests for cosine similarity and index search semantics
// ABOUTME: Covers threshold cutoff, top-k truncation, and deterministic ties
package index

import (
	"fmt"
	"math"
	"testing"

	"github.com/HelloJC24/BNGCIA/internal/models"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float64{1, 0},
			b:    []float64{-1, 0},
			want: -1.0,
		},
		{
			name: "zero norm left",
			a:    []float64{0, 0, 0},
			b:    []float64{1, 2, 3},
			want: 0.0,
		},
		{
			name: "zero norm right",
			a:    []float64{1, 2, 3},
			b:    []float64{0, 0, 0},
			want: 0.0,
		},
		{
			name: "length mismatch",
			a:    []float64{1, 2},
			b:    []float64{1, 2, 3},
			want: 0.0,
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosine_Symmetry(t *testing.T) {
	a := []float64{0.3, -0.7, 0.2, 0.9}
	b := []float64{0.1, 0.4, -0.5, 0.2}
	if got, want := Cosine(a, b), Cosine(b, a); math.Abs(got-want) > 1e-12 {
		t.Errorf("Cosine(a,b) = %v, Cosine(b,a) = %v", got, want)
	}
}

func indexOf(embeddings ...[]float64) *Index {
	c := &models.Corpus{
		Header: models.CorpusHeader{EmbeddingDim: len(embeddings[0])},
	}
	for i, emb := range embeddings {
		c.Chunks = append(c.Chunks, models.Chunk{
			ID:        fmt.Sprintf("chunk-%d", i),
			Text:      fmt.Sprintf("text %d", i),
			SourceURL: "https://thebngc.com",
			Position:  i,
			Embedding: emb,
		})
	}
	return Build(c)
}

func TestSearch_ThresholdExcludesLowScores(t *testing.T) {
	// One strong match and one weak one: only the strong match survives
	// the 0.3 cutoff.
	ix := indexOf(
		[]float64{1, 0},    // score 1.0 against query
		[]float64{0.2, 1},  // score ~0.196
		[]float64{0.5, 1},  // score ~0.447
		[]float64{-1, 0.1}, // negative score
	)

	results := ix.Search([]float64{1, 0}, 5, 0.3)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Chunk.ID != "chunk-0" {
		t.Errorf("top result = %s, want chunk-0", results[0].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by descending score")
	}
	for _, r := range results {
		if r.Score < 0.3 {
			t.Errorf("result %s scored %v, below threshold", r.Chunk.ID, r.Score)
		}
	}
}

func TestSearch_TopKTruncation(t *testing.T) {
	ix := indexOf(
		[]float64{1, 0},
		[]float64{0.9, 0.1},
		[]float64{0.8, 0.2},
		[]float64{0.7, 0.3},
	)

	results := ix.Search([]float64{1, 0}, 2, 0.0)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Chunk.ID != "chunk-0" || results[1].Chunk.ID != "chunk-1" {
		t.Errorf("got %s, %s; want the two highest-scoring chunks",
			results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestSearch_FewerMatchesThanK(t *testing.T) {
	ix := indexOf([]float64{1, 0}, []float64{0, 1})

	results := ix.Search([]float64{1, 0}, 5, 0.3)
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	for name, ix := range map[string]*Index{
		"nil corpus":   Build(nil),
		"empty corpus": Build(&models.Corpus{}),
	} {
		t.Run(name, func(t *testing.T) {
			results := ix.Search([]float64{1, 0}, 5, 0.3)
			if results == nil || len(results) != 0 {
				t.Errorf("results = %v, want empty non-nil slice", results)
			}
		})
	}
}

func TestSearch_TiesResolveToCorpusOrder(t *testing.T) {
	// Three chunks with identical embeddings score identically; the stable
	// sort must keep them in corpus order so retrieval is reproducible.
	same := []float64{0.5, 0.5}
	ix := indexOf(same, same, same)

	results := ix.Search([]float64{1, 1}, 3, 0.0)
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, r := range results {
		if want := fmt.Sprintf("chunk-%d", i); r.Chunk.ID != want {
			t.Errorf("result %d = %s, want %s", i, r.Chunk.ID, want)
		}
	}
}

func TestSearch_ZeroNormQueryMatchesNothing(t *testing.T) {
	ix := indexOf([]float64{1, 0}, []float64{0, 1})

	results := ix.Search([]float64{0, 0}, 5, 0.3)
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestBuild_Metadata(t *testing.T) {
	ix := indexOf([]float64{1, 0, 0}, []float64{0, 1, 0})
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
	if ix.Dimension() != 3 {
		t.Errorf("Dimension() = %d, want 3", ix.Dimension())
	}

	var nilIx *Index
	if nilIx.Len() != 0 || nilIx.Dimension() != 0 {
		t.Error("nil index should report zero length and dimension")
	}
}
