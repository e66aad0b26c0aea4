// Package nn evaluates small fully-connected feed-forward networks
// whose weights arrive frozen in a model asset. There is no training
// path; a network is immutable once constructed and safe to share
// across goroutines. Per-call activation buffers live in Scratch so
// the per-residue hot loop allocates nothing.
package nn

import (
	"errors"
	"fmt"
	"math"
)

var ErrDimensionMismatch = errors.New("layer dimension mismatch")

// Layer is one dense step y = activation(W*x + b). Weights are
// row-major: Weights[r*Cols+c] connects input c to output r.
type Layer struct {
	Rows       int
	Cols       int
	Activation string
	Weights    []float64
	Biases     []float64
}

// Network is an ordered stack of layers with validated chaining.
type Network struct {
	layers   []Layer
	inDim    int
	outDim   int
	maxWidth int

	// single rounds every layer output through float32, matching
	// assets whose reference activations were computed in single
	// precision.
	single bool
}

// NewNetwork validates layer shapes and chaining. The activation of
// every layer must be known to the registry.
func NewNetwork(layers []Layer, singlePrecision bool) (*Network, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: network has no layers", ErrDimensionMismatch)
	}
	maxWidth := layers[0].Cols
	for i, layer := range layers {
		if layer.Rows <= 0 || layer.Cols <= 0 {
			return nil, fmt.Errorf("%w: layer %d has shape %dx%d", ErrDimensionMismatch, i, layer.Rows, layer.Cols)
		}
		if len(layer.Weights) != layer.Rows*layer.Cols {
			return nil, fmt.Errorf("%w: layer %d has %d weights, want %d", ErrDimensionMismatch, i, len(layer.Weights), layer.Rows*layer.Cols)
		}
		if len(layer.Biases) != layer.Rows {
			return nil, fmt.Errorf("%w: layer %d has %d biases, want %d", ErrDimensionMismatch, i, len(layer.Biases), layer.Rows)
		}
		if i > 0 && layer.Cols != layers[i-1].Rows {
			return nil, fmt.Errorf("%w: layer %d consumes %d values, previous produces %d", ErrDimensionMismatch, i, layer.Cols, layers[i-1].Rows)
		}
		if !KnownActivation(layer.Activation) {
			return nil, fmt.Errorf("%w: %s", ErrActivationNotFound, layer.Activation)
		}
		if layer.Rows > maxWidth {
			maxWidth = layer.Rows
		}
	}
	return &Network{
		layers:   layers,
		inDim:    layers[0].Cols,
		outDim:   layers[len(layers)-1].Rows,
		maxWidth: maxWidth,
		single:   singlePrecision,
	}, nil
}

func (n *Network) InputDim() int  { return n.inDim }
func (n *Network) OutputDim() int { return n.outDim }

// SinglePrecision reports whether layer outputs are rounded through
// float32.
func (n *Network) SinglePrecision() bool { return n.single }

func (n *Network) Layers() []Layer { return n.layers }

// Scratch holds the two activation buffers one Forward call ping-pongs
// between. One Scratch per worker; never shared.
type Scratch struct {
	a []float64
	b []float64
}

func (n *Network) NewScratch() *Scratch {
	return &Scratch{
		a: make([]float64, n.maxWidth),
		b: make([]float64, n.maxWidth),
	}
}

// Forward evaluates the network on x and returns a slice aliasing one
// of the scratch buffers; the caller must copy the result if it
// outlives the next Forward call on the same Scratch.
func (n *Network) Forward(x []float64, s *Scratch) ([]float64, error) {
	if len(x) != n.inDim {
		return nil, fmt.Errorf("%w: input has %d values, want %d", ErrDimensionMismatch, len(x), n.inDim)
	}

	cur := s.a[:len(x)]
	copy(cur, x)
	if n.single {
		roundSingle(cur)
	}
	next := s.b

	for i := range n.layers {
		layer := &n.layers[i]
		out := next[:layer.Rows]
		for r := 0; r < layer.Rows; r++ {
			sum := layer.Biases[r]
			row := layer.Weights[r*layer.Cols : (r+1)*layer.Cols]
			for c, w := range row {
				sum += w * cur[c]
			}
			out[r] = sum
		}
		if err := activate(layer.Activation, out); err != nil {
			return nil, err
		}
		if n.single {
			roundSingle(out)
		}
		cur, next = out, cur[:cap(cur)]
	}
	return cur, nil
}

func activate(name string, values []float64) error {
	if name == Softmax {
		softmax(values)
		return nil
	}
	fn, err := GetActivation(name)
	if err != nil {
		return err
	}
	for i, v := range values {
		values[i] = fn(v)
	}
	return nil
}

// softmax shifts by the maximum before exponentiating so large logits
// cannot overflow.
func softmax(values []float64) {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	sum := 0.0
	for i, v := range values {
		e := math.Exp(v - max)
		values[i] = e
		sum += e
	}
	for i := range values {
		values[i] /= sum
	}
}

func roundSingle(values []float64) {
	for i, v := range values {
		values[i] = float64(float32(v))
	}
}
