// Package threedi maps protein backbone coordinates onto the 20-state
// 3Di structural alphabet. For every residue it finds the most
// informative partner residue, summarises the pair's local geometry in
// a fixed 10-slot descriptor, embeds the descriptor with the asset's
// network, and snaps the embedding onto the nearest centroid. The
// centroid index is the state; residues that cannot be embedded carry
// the reserved sentinel code K.
package threedi

import (
	"context"
	"errors"
	"fmt"

	"foldcode/internal/asset"
	"foldcode/internal/geom"
	"foldcode/internal/nn"
	"foldcode/internal/quantize"
)

var ErrInputShapeMismatch = errors.New("coordinate arrays differ in length")

// Encoder turns one chain at a time into states. It holds only the
// shared read-only asset plus per-call scratch, so it is cheap to keep
// per worker; a single Encoder must not be used concurrently.
type Encoder struct {
	asset   *asset.Asset
	weight  float64
	penalty SequencePenalty

	effCb     []geom.Vec3
	candidate []bool
	partner   []int
	valid     []bool
	features  []float64
	nnScratch *nn.Scratch
}

// NewEncoder builds an encoder around a loaded asset, using the
// asset's clipped sequence penalty.
func NewEncoder(a *asset.Asset) (*Encoder, error) {
	return NewEncoderWithPenalty(a, ClippedPenalty(a.Params.PenaltyClip))
}

// NewEncoderWithPenalty swaps in a different penalty shape. The asset
// weight still scales it.
func NewEncoderWithPenalty(a *asset.Asset, penalty SequencePenalty) (*Encoder, error) {
	if a == nil {
		return nil, errors.New("asset is required")
	}
	if a.FeatureCount() != FeatureCount {
		return nil, fmt.Errorf("%w: network consumes %d features, encoder emits %d", asset.ErrAssetMalformed, a.FeatureCount(), FeatureCount)
	}
	if penalty == nil {
		return nil, errors.New("sequence penalty is required")
	}
	return &Encoder{
		asset:     a,
		weight:    a.Params.PenaltyWeight,
		penalty:   penalty,
		features:  make([]float64, FeatureCount),
		nnScratch: a.Network.NewScratch(),
	}, nil
}

// InvalidState is the sentinel code this encoder emits for residues it
// cannot assign.
func (e *Encoder) InvalidState() byte { return e.asset.InvalidState() }

// Encode maps one chain to a state per residue, in input order. The
// four arrays must share length; Cb entries with non-finite components
// mean "missing" and get a synthesised virtual center. Chains shorter
// than three residues come back all-invalid without error. Geometric
// degeneracies invalidate single residues and never fail the call.
func (e *Encoder) Encode(ctx context.Context, ca, n, c, cb []geom.Vec3) ([]byte, error) {
	l := len(ca)
	if len(n) != l || len(c) != l || len(cb) != l {
		return nil, fmt.Errorf("%w: ca=%d n=%d c=%d cb=%d", ErrInputShapeMismatch, l, len(n), len(c), len(cb))
	}

	states := make([]byte, l)
	invalid := e.asset.InvalidState()
	for i := range states {
		states[i] = invalid
	}
	if l < 3 {
		return states, nil
	}

	e.resize(l)
	e.prepare(ca, n, c, cb)
	if err := e.selectPartners(ctx, ca); err != nil {
		return nil, err
	}

	for i := 1; i < l-1; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.valid[i] {
			continue
		}
		if err := featuresInto(e.features, i, e.partner[i], ca); err != nil {
			if errors.Is(err, geom.ErrDegenerateGeometry) {
				continue
			}
			return nil, err
		}
		embedding, err := e.asset.Network.Forward(e.features, e.nnScratch)
		if err != nil {
			return nil, err
		}
		state, err := quantize.Nearest(embedding, e.asset.Centroids)
		if err != nil {
			return nil, err
		}
		states[i] = byte(state)
	}
	return states, nil
}

// Partners exposes the partner mapping and validity mask of one chain,
// the intermediate the driver consumes between partner search and
// embedding.
func (e *Encoder) Partners(ctx context.Context, ca, n, c, cb []geom.Vec3) ([]int, []bool, error) {
	l := len(ca)
	if len(n) != l || len(c) != l || len(cb) != l {
		return nil, nil, fmt.Errorf("%w: ca=%d n=%d c=%d cb=%d", ErrInputShapeMismatch, l, len(n), len(c), len(cb))
	}
	partners := make([]int, l)
	valid := make([]bool, l)
	for i := range partners {
		partners[i] = -1
	}
	if l < 3 {
		return partners, valid, nil
	}

	e.resize(l)
	e.prepare(ca, n, c, cb)
	if err := e.selectPartners(ctx, ca); err != nil {
		return nil, nil, err
	}
	copy(partners, e.partner[:l])
	copy(valid, e.valid[:l])
	return partners, valid, nil
}

func (e *Encoder) resize(l int) {
	if cap(e.effCb) < l {
		e.effCb = make([]geom.Vec3, l)
		e.candidate = make([]bool, l)
		e.partner = make([]int, l)
		e.valid = make([]bool, l)
	}
	e.effCb = e.effCb[:l]
	e.candidate = e.candidate[:l]
	e.partner = e.partner[:l]
	e.valid = e.valid[:l]
}

// prepare fills the effective C-beta array and the candidate mask.
// EffectiveCb[i] is Cb[i] when finite, otherwise the synthesised
// virtual center. A residue qualifies as a partner candidate when it
// is interior, its effective C-beta exists, and both flanking backbone
// tangents are non-degenerate.
func (e *Encoder) prepare(ca, n, c, cb []geom.Vec3) {
	l := len(ca)
	for i := 0; i < l; i++ {
		e.partner[i] = -1
		e.valid[i] = false
		e.candidate[i] = false

		effOK := false
		switch {
		case !ca[i].Finite() || !n[i].Finite() || !c[i].Finite():
		case cb[i].Finite():
			e.effCb[i] = cb[i]
			effOK = true
		default:
			v, err := VirtualCenter(ca[i], n[i], c[i], e.asset.Params)
			if err == nil {
				e.effCb[i] = v
				effOK = true
			}
		}
		if !effOK || i == 0 || i == l-1 {
			continue
		}
		if ca[i].Sub(ca[i-1]).Norm() == 0 || ca[i+1].Sub(ca[i]).Norm() == 0 {
			continue
		}
		e.candidate[i] = true
	}
}
