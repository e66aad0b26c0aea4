// Package asset holds the frozen model bundle: the embedding network
// layers, the centroid table defining the state alphabet, and the
// geometric constants of the virtual-center construction. An Asset is
// immutable after load and shared by every encoder in the process.
package asset

import (
	"errors"
	"fmt"

	"foldcode/internal/nn"
)

// CurrentVersion is the asset format this build reads and writes.
const CurrentVersion = 1

// Float widths an asset may declare for its packed numbers.
const (
	PrecisionSingle = 4
	PrecisionDouble = 8
)

var ErrAssetMalformed = errors.New("asset malformed")

// Params are the geometric constants carried by the asset header.
// Alpha and Beta are in degrees; D scales the tetrahedral C-beta
// offset when a virtual center is synthesised. PenaltyWeight and
// PenaltyClip parameterise the sequence-separation term of the
// partner cost.
type Params struct {
	Alpha         float64
	Beta          float64
	D             float64
	PenaltyWeight float64
	PenaltyClip   float64
}

type Asset struct {
	Version   int
	Precision int
	Params    Params
	Centroids [][]float64
	Network   *nn.Network
}

// New validates the bundle as a whole: the centroid table must be
// non-empty and rectangular, and its width must equal the network's
// output dimension.
func New(version, precision int, params Params, centroids [][]float64, layers []nn.Layer) (*Asset, error) {
	if precision != PrecisionSingle && precision != PrecisionDouble {
		return nil, fmt.Errorf("%w: unsupported precision %d", ErrAssetMalformed, precision)
	}
	network, err := nn.NewNetwork(layers, precision == PrecisionSingle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetMalformed, err)
	}
	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: empty centroid table", ErrAssetMalformed)
	}
	for k, c := range centroids {
		if len(c) != network.OutputDim() {
			return nil, fmt.Errorf("%w: centroid %d has %d components, network emits %d", ErrAssetMalformed, k, len(c), network.OutputDim())
		}
	}
	return &Asset{
		Version:   version,
		Precision: precision,
		Params:    params,
		Centroids: centroids,
		Network:   network,
	}, nil
}

// FeatureCount is the descriptor length the network consumes.
func (a *Asset) FeatureCount() int { return a.Network.InputDim() }

// EmbeddingDim is the network output width.
func (a *Asset) EmbeddingDim() int { return a.Network.OutputDim() }

// StateCount is the alphabet size K.
func (a *Asset) StateCount() int { return len(a.Centroids) }

// InvalidState is the reserved sentinel code K for residues that
// cannot be assigned.
func (a *Asset) InvalidState() byte { return byte(len(a.Centroids)) }
