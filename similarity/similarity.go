package similarity

import (
	"fmt"
	"math"
)

// Embedder produces a fixed-dimension vector for a text.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// Scorer computes semantic closeness between two report texts.
type Scorer struct {
	embedder Embedder
}

func NewScorer(embedder Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Score embeds both texts independently and returns their cosine
// similarity in [-1, 1]. Deterministic given a deterministic embedding
// model.
func (s *Scorer) Score(medicalReport, laymanReport string) (float64, error) {
	a, err := s.embedder.Embed(medicalReport)
	if err != nil {
		return 0, fmt.Errorf("failed to embed medical report: %w", err)
	}
	b, err := s.embedder.Embed(laymanReport)
	if err != nil {
		return 0, fmt.Errorf("failed to embed layman report: %w", err)
	}
	return Cosine(a, b)
}

// dotp computes the unnormalized dot-product between two vectors. It
// assumes that a and b are equal length.
func dotp(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine returns the cosine similarity of two vectors.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}

	dot := dotp(a, b)

	ma := math.Sqrt(dotp(a, a))
	mb := math.Sqrt(dotp(b, b))
	if ma == 0 || mb == 0 {
		return 0, fmt.Errorf("zero magnitude vector")
	}

	return dot / (ma * mb), nil
}
