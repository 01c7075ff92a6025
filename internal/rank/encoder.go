// Package rank scores candidate evidence against a claim with a
// two-stage bi-encoder / cross-encoder cascade.
package rank

import (
	"context"
	"math"
)

// BiEncoder embeds texts independently for cosine comparison. Cheap,
// approximate; used as the stage-A prefilter.
type BiEncoder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CrossEncoder jointly encodes (query, text) pairs into fine-grained
// relevance scores. Expensive, precise; the stage-B reranker.
type CrossEncoder interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Cosine returns the cosine similarity of two embedding vectors
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
