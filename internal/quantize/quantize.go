// Package quantize snaps an embedding onto the nearest entry of a
// fixed centroid table. The table order defines the state alphabet,
// so ties must resolve the same way everywhere: smallest index wins.
package quantize

import (
	"errors"
	"fmt"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Nearest returns the index of the centroid with the smallest squared
// Euclidean distance to e.
func Nearest(e []float64, centroids [][]float64) (int, error) {
	if len(centroids) == 0 {
		return 0, errors.New("centroid table is empty")
	}
	best := 0
	bestDist := 0.0
	for k, c := range centroids {
		if len(c) != len(e) {
			return 0, fmt.Errorf("%w: centroid %d has %d components, embedding has %d", ErrDimensionMismatch, k, len(c), len(e))
		}
		d := squaredL2(e, c)
		if k == 0 || d < bestDist {
			best = k
			bestDist = d
		}
	}
	return best, nil
}

func squaredL2(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
