package threedi

import (
	"math"

	"foldcode/internal/geom"
)

// FeatureCount is the descriptor length consumed by the embedding
// network.
const FeatureCount = 10

// Descriptor slots are a positional protocol with the trained network;
// the table below is the single place their meaning lives. u1, u2 are
// the backbone tangents flanking residue i, u3, u4 the tangents
// flanking the partner j, and u5 points from Ca[i] to Ca[j].
//
// Slot 8 clips the separation at +-4 while slot 9 log-scales it
// unclipped; the asymmetry is part of the published model, not an
// oversight.
const (
	slotBendI      = 0 // u1 . u2
	slotBendJ      = 1 // u3 . u4
	slotSpanI      = 2 // u1 . u5
	slotSpanJ      = 3 // u3 . u5
	slotCrossOut   = 4 // u1 . u4
	slotCrossIn    = 5 // u2 . u3
	slotTangents   = 6 // u1 . u3
	slotDist       = 7 // |Ca[i] - Ca[j]|
	slotSepClipped = 8 // sign(j-i) * min(|j-i|, sepClip)
	slotSepLog     = 9 // sign(j-i) * ln(|j-i| + 1)
)

// sepClip bounds the slot-8 separation term.
const sepClip = 4

// SlotNames maps descriptor slots to their semantics, in wire order.
var SlotNames = [FeatureCount]string{
	slotBendI:      "bend(i)",
	slotBendJ:      "bend(j)",
	slotSpanI:      "span(i)",
	slotSpanJ:      "span(j)",
	slotCrossOut:   "cross-out",
	slotCrossIn:    "cross-in",
	slotTangents:   "tangents",
	slotDist:       "ca-dist",
	slotSepClipped: "sep-clipped",
	slotSepLog:     "sep-log",
}

// featuresInto fills dst with the descriptor for the residue pair
// (i, j). Callers guarantee that i-1, i+1, j-1, j+1 are in range and
// that the four flanking tangents are non-degenerate; only the
// separation vector u5 can still fail, when Ca[i] and Ca[j] coincide.
func featuresInto(dst []float64, i, j int, ca []geom.Vec3) error {
	u1, err := ca[i].Sub(ca[i-1]).Unit()
	if err != nil {
		return err
	}
	u2, err := ca[i+1].Sub(ca[i]).Unit()
	if err != nil {
		return err
	}
	u3, err := ca[j].Sub(ca[j-1]).Unit()
	if err != nil {
		return err
	}
	u4, err := ca[j+1].Sub(ca[j]).Unit()
	if err != nil {
		return err
	}
	u5, err := ca[j].Sub(ca[i]).Unit()
	if err != nil {
		return err
	}

	sep := float64(j - i)
	sign := 1.0
	if sep < 0 {
		sign = -1.0
		sep = -sep
	}
	clipped := sep
	if clipped > sepClip {
		clipped = sepClip
	}

	dst[slotBendI] = u1.Dot(u2)
	dst[slotBendJ] = u3.Dot(u4)
	dst[slotSpanI] = u1.Dot(u5)
	dst[slotSpanJ] = u3.Dot(u5)
	dst[slotCrossOut] = u1.Dot(u4)
	dst[slotCrossIn] = u2.Dot(u3)
	dst[slotTangents] = u1.Dot(u3)
	dst[slotDist] = geom.Dist(ca[i], ca[j])
	dst[slotSepClipped] = sign * clipped
	dst[slotSepLog] = sign * math.Log(sep+1)
	return nil
}
