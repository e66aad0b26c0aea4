package threedi

import (
	"context"

	"foldcode/internal/geom"
)

// SequencePenalty maps the absolute sequence separation |j-i| to the
// penalty term of the composite partner cost. The asset weight scales
// it; a weight of zero reduces the cost to the pure Euclidean
// distance between effective C-beta positions.
type SequencePenalty func(sep int) float64

// ClippedPenalty is the published penalty shape: the separation
// itself, clipped at the asset's bound.
func ClippedPenalty(clip float64) SequencePenalty {
	return func(sep int) float64 {
		s := float64(sep)
		if s > clip {
			return clip
		}
		return s
	}
}

// selectPartners fills e.partner and e.valid for the current chain.
// A residue is a candidate only when it is interior, its effective
// C-beta exists, and both flanking backbone tangents are
// non-degenerate; that guarantees feature extraction for any chosen
// pair can only fail on coincident Ca[i], Ca[j]. Ties resolve to the
// smallest |j-i|, then the smallest j.
func (e *Encoder) selectPartners(ctx context.Context, ca []geom.Vec3) error {
	l := len(ca)
	for i := 1; i < l-1; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.partner[i] = -1
		e.valid[i] = false
		if !e.candidate[i] {
			continue
		}

		bestJ := -1
		bestCost := 0.0
		bestSep := 0
		for j := 1; j < l-1; j++ {
			if j == i || !e.candidate[j] {
				continue
			}
			sep := j - i
			if sep < 0 {
				sep = -sep
			}
			cost := geom.Dist(e.effCb[i], e.effCb[j]) + e.weight*e.penalty(sep)
			switch {
			case bestJ < 0 || cost < bestCost:
			case cost == bestCost && sep < bestSep:
			case cost == bestCost && sep == bestSep && j < bestJ:
			default:
				continue
			}
			bestJ, bestCost, bestSep = j, cost, sep
		}
		if bestJ >= 0 {
			e.partner[i] = bestJ
			e.valid[i] = true
		}
	}
	return nil
}
