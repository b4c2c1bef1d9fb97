package retrieval

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch signals that two vectors differ in length, which means
// the index was built against a different embedder than the one that produced
// the query vector. The index must be rebuilt.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. A zero-magnitude vector yields 0 ("no match") rather than a
// division fault.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}
