package asset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"foldcode/internal/nn"
)

// Hard ceilings on declared counts so a truncated or garbage header
// cannot drive huge allocations before the mismatch is noticed.
const (
	maxDim        = 1 << 16
	maxLayerCount = 1 << 10
)

var activationTags = []string{"identity", "relu", "tanh", "sigmoid", nn.Softmax}

func activationFromTag(tag uint32) (string, error) {
	if int(tag) >= len(activationTags) {
		return "", fmt.Errorf("%w: unknown activation tag %d", ErrAssetMalformed, tag)
	}
	return activationTags[tag], nil
}

func tagFromActivation(name string) (uint32, error) {
	for i, n := range activationTags {
		if n == name {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("%w: activation %q has no wire tag", ErrAssetMalformed, name)
}

type header struct {
	Version       uint32
	FeatureCount  uint32
	EmbeddingDim  uint32
	CentroidCount uint32
	Precision     uint32
	LayerCount    uint32
	Alpha         float64
	Beta          float64
	D             float64
	PenaltyWeight float64
	PenaltyClip   float64
}

// Read parses an asset blob in a single validated pass, fully
// materialising centroids and layers. Any truncation or dimension
// inconsistency yields ErrAssetMalformed; no partial asset is ever
// returned.
func Read(r io.Reader) (*Asset, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrAssetMalformed, err)
	}
	if h.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrAssetMalformed, h.Version)
	}
	if h.Precision != PrecisionSingle && h.Precision != PrecisionDouble {
		return nil, fmt.Errorf("%w: unsupported precision %d", ErrAssetMalformed, h.Precision)
	}
	if h.FeatureCount == 0 || h.FeatureCount > maxDim ||
		h.EmbeddingDim == 0 || h.EmbeddingDim > maxDim ||
		h.CentroidCount == 0 || h.CentroidCount > maxDim {
		return nil, fmt.Errorf("%w: implausible dimensions F=%d E=%d K=%d", ErrAssetMalformed, h.FeatureCount, h.EmbeddingDim, h.CentroidCount)
	}
	if h.LayerCount == 0 || h.LayerCount > maxLayerCount {
		return nil, fmt.Errorf("%w: implausible layer count %d", ErrAssetMalformed, h.LayerCount)
	}

	flat, err := readFloats(r, int(h.CentroidCount)*int(h.EmbeddingDim), int(h.Precision))
	if err != nil {
		return nil, fmt.Errorf("%w: centroid table: %v", ErrAssetMalformed, err)
	}
	centroids := make([][]float64, h.CentroidCount)
	for k := range centroids {
		centroids[k] = flat[k*int(h.EmbeddingDim) : (k+1)*int(h.EmbeddingDim)]
	}

	layers := make([]nn.Layer, 0, h.LayerCount)
	prevRows := int(h.FeatureCount)
	for i := 0; i < int(h.LayerCount); i++ {
		var shape struct {
			Rows       uint32
			Cols       uint32
			Activation uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &shape); err != nil {
			return nil, fmt.Errorf("%w: layer %d shape: %v", ErrAssetMalformed, i, err)
		}
		if shape.Rows == 0 || shape.Rows > maxDim || shape.Cols == 0 || shape.Cols > maxDim {
			return nil, fmt.Errorf("%w: layer %d has implausible shape %dx%d", ErrAssetMalformed, i, shape.Rows, shape.Cols)
		}
		if int(shape.Cols) != prevRows {
			return nil, fmt.Errorf("%w: layer %d consumes %d values, want %d", ErrAssetMalformed, i, shape.Cols, prevRows)
		}
		activation, err := activationFromTag(shape.Activation)
		if err != nil {
			return nil, err
		}
		weights, err := readFloats(r, int(shape.Rows)*int(shape.Cols), int(h.Precision))
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d weights: %v", ErrAssetMalformed, i, err)
		}
		biases, err := readFloats(r, int(shape.Rows), int(h.Precision))
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d biases: %v", ErrAssetMalformed, i, err)
		}
		layers = append(layers, nn.Layer{
			Rows:       int(shape.Rows),
			Cols:       int(shape.Cols),
			Activation: activation,
			Weights:    weights,
			Biases:     biases,
		})
		prevRows = int(shape.Rows)
	}
	if prevRows != int(h.EmbeddingDim) {
		return nil, fmt.Errorf("%w: final layer emits %d values, header declares E=%d", ErrAssetMalformed, prevRows, h.EmbeddingDim)
	}

	return New(int(h.Version), int(h.Precision), Params{
		Alpha:         h.Alpha,
		Beta:          h.Beta,
		D:             h.D,
		PenaltyWeight: h.PenaltyWeight,
		PenaltyClip:   h.PenaltyClip,
	}, centroids, layers)
}

// LoadFile reads an asset blob from disk. Load-time only; the encoder
// itself never touches the filesystem.
func LoadFile(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func readFloats(r io.Reader, n, width int) ([]float64, error) {
	if width == PrecisionSingle {
		buf := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, v := range buf {
			out[i] = float64(v)
		}
		return out, nil
	}
	out := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}
