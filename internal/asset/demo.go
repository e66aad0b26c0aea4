package asset

import "foldcode/internal/nn"

// Demo builds a small self-consistent model bundle: a single identity
// layer projecting the descriptor onto (backbone bend, scaled partner
// distance) and a 5x4 centroid grid over that plane. It exists so the
// pipeline can be exercised and demonstrated without distributing
// trained weights; states it emits are internally consistent but carry
// no trained meaning.
func Demo() *Asset {
	const featureCount = 10

	// Row 0 picks slot 0 (cos of the backbone bend at i); row 1 scales
	// slot 7 (C-alpha pair distance) into the same order of magnitude.
	weights := make([]float64, 2*featureCount)
	weights[0] = 1
	weights[featureCount+7] = 0.1

	layers := []nn.Layer{
		{
			Rows:       2,
			Cols:       featureCount,
			Activation: "identity",
			Weights:    weights,
			Biases:     []float64{0, 0},
		},
	}

	xs := []float64{-0.8, -0.4, 0, 0.4, 0.8}
	ys := []float64{0.2, 0.45, 0.7, 0.95}
	centroids := make([][]float64, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			centroids = append(centroids, []float64{x, y})
		}
	}

	a, err := New(CurrentVersion, PrecisionDouble, Params{
		Alpha:         270,
		Beta:          0,
		D:             2,
		PenaltyWeight: 0,
		PenaltyClip:   4,
	}, centroids, layers)
	if err != nil {
		panic(err)
	}
	return a
}
