package asset

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Write serialises the asset in the exact layout Read expects.
// Numbers are little-endian at the asset's declared precision.
func Write(w io.Writer, a *Asset) error {
	layers := a.Network.Layers()
	h := header{
		Version:       uint32(a.Version),
		FeatureCount:  uint32(a.FeatureCount()),
		EmbeddingDim:  uint32(a.EmbeddingDim()),
		CentroidCount: uint32(a.StateCount()),
		Precision:     uint32(a.Precision),
		LayerCount:    uint32(len(layers)),
		Alpha:         a.Params.Alpha,
		Beta:          a.Params.Beta,
		D:             a.Params.D,
		PenaltyWeight: a.Params.PenaltyWeight,
		PenaltyClip:   a.Params.PenaltyClip,
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write asset header: %w", err)
	}

	for _, c := range a.Centroids {
		if err := writeFloats(w, c, a.Precision); err != nil {
			return fmt.Errorf("write centroid table: %w", err)
		}
	}

	for i, layer := range layers {
		tag, err := tagFromActivation(layer.Activation)
		if err != nil {
			return err
		}
		shape := struct {
			Rows       uint32
			Cols       uint32
			Activation uint32
		}{uint32(layer.Rows), uint32(layer.Cols), tag}
		if err := binary.Write(w, binary.LittleEndian, shape); err != nil {
			return fmt.Errorf("write layer %d shape: %w", i, err)
		}
		if err := writeFloats(w, layer.Weights, a.Precision); err != nil {
			return fmt.Errorf("write layer %d weights: %w", i, err)
		}
		if err := writeFloats(w, layer.Biases, a.Precision); err != nil {
			return fmt.Errorf("write layer %d biases: %w", i, err)
		}
	}
	return nil
}

func writeFloats(w io.Writer, values []float64, width int) error {
	if width == PrecisionSingle {
		buf := make([]float32, len(values))
		for i, v := range values {
			buf[i] = float32(v)
		}
		return binary.Write(w, binary.LittleEndian, buf)
	}
	return binary.Write(w, binary.LittleEndian, values)
}
