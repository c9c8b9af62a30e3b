package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// MLPClassifier is a feed-forward network evaluated in-process. The weights
// come from a JSON artifact exported after training; the final layer must
// produce a single sigmoid probability.
type MLPClassifier struct {
	inputWidth int
	layers     []DenseLayer
}

// DenseLayer is one fully-connected layer of the exported network.
type DenseLayer struct {
	// Weights is row-major: Weights[i][j] connects input i to unit j.
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

type mlpArtifact struct {
	InputWidth int          `json:"input_width"`
	Layers     []DenseLayer `json:"layers"`
}

// LoadMLPClassifier reads a network artifact from path.
func LoadMLPClassifier(path string) (*MLPClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var artifact mlpArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	return NewMLPClassifier(artifact.InputWidth, artifact.Layers)
}

// NewMLPClassifier validates layer shapes and builds the classifier.
func NewMLPClassifier(inputWidth int, layers []DenseLayer) (*MLPClassifier, error) {
	if inputWidth <= 0 {
		return nil, fmt.Errorf("input width must be positive, got %d", inputWidth)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("model has no layers")
	}
	width := inputWidth
	for i, layer := range layers {
		if len(layer.Weights) != width {
			return nil, fmt.Errorf("layer %d expects %d inputs, previous layer provides %d", i, len(layer.Weights), width)
		}
		if width = len(layer.Biases); width == 0 {
			return nil, fmt.Errorf("layer %d has no units", i)
		}
		for j, row := range layer.Weights {
			if len(row) != width {
				return nil, fmt.Errorf("layer %d weight row %d has %d columns, want %d", i, j, len(row), width)
			}
		}
		switch layer.Activation {
		case "relu", "sigmoid", "linear":
		default:
			return nil, fmt.Errorf("layer %d has unsupported activation %q", i, layer.Activation)
		}
	}
	if width != 1 {
		return nil, fmt.Errorf("final layer must have one unit, got %d", width)
	}
	return &MLPClassifier{inputWidth: inputWidth, layers: layers}, nil
}

// Predict evaluates each row through the network.
func (m *MLPClassifier) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) != m.inputWidth {
			return nil, fmt.Errorf("row %d has %d columns, model expects %d", i, len(row), m.inputWidth)
		}
		out[i] = m.forward(row)
	}
	return out, nil
}

func (m *MLPClassifier) forward(row []float64) float64 {
	current := row
	for _, layer := range m.layers {
		next := make([]float64, len(layer.Biases))
		copy(next, layer.Biases)
		for i, v := range current {
			if v == 0 {
				continue
			}
			for j, w := range layer.Weights[i] {
				next[j] += v * w
			}
		}
		for j := range next {
			next[j] = activate(layer.Activation, next[j])
		}
		current = next
	}
	return current[0]
}

func activate(name string, v float64) float64 {
	switch name {
	case "relu":
		if v < 0 {
			return 0
		}
		return v
	case "sigmoid":
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}

// InputWidth returns the trained column count.
func (m *MLPClassifier) InputWidth() int { return m.inputWidth }

// Close is a no-op for the in-process backend.
func (m *MLPClassifier) Close() error { return nil }
