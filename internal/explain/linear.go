package explain

import (
	"context"
	"fmt"

	"github.com/fundsight/explain-engine/internal/models"
)

// LinearExplainer computes exact contributions for a linear (single
// logistic unit) model: w_i * (x_i - baseline_i), where the baseline is the
// column mean of the background set. Deterministic, so it doubles as the
// reference engine in tests.
type LinearExplainer struct {
	weights  []float64
	baseline []float64
}

// NewLinearExplainer derives the baseline from the background set.
func NewLinearExplainer(weights []float64, background [][]float64) (*LinearExplainer, error) {
	if len(background) == 0 {
		return nil, fmt.Errorf("background set is empty")
	}
	baseline := make([]float64, len(weights))
	for _, row := range background {
		if len(row) != len(weights) {
			return nil, fmt.Errorf("background row has %d columns, weights have %d", len(row), len(weights))
		}
		for i, v := range row {
			baseline[i] += v
		}
	}
	for i := range baseline {
		baseline[i] /= float64(len(background))
	}
	return &LinearExplainer{weights: weights, baseline: baseline}, nil
}

// Attribute returns exact per-column contributions.
func (l *LinearExplainer) Attribute(_ context.Context, vec models.ScaledVector) ([]models.Attribution, error) {
	if len(vec.Values) != len(l.weights) {
		return nil, fmt.Errorf("vector has %d columns, weights have %d", len(vec.Values), len(l.weights))
	}
	attrs := make([]models.Attribution, len(vec.Values))
	for i, v := range vec.Values {
		attrs[i] = models.Attribution{
			Feature: vec.Columns[i],
			Value:   l.weights[i] * (v - l.baseline[i]),
		}
	}
	return attrs, nil
}
