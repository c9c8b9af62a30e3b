package explain

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/fundsight/explain-engine/internal/inference"
	"github.com/fundsight/explain-engine/internal/models"
)

// KernelExplainer estimates Shapley-style contributions by sampling feature
// coalitions against a fixed background reference set. For each sample it
// draws a background row and a random column ordering, then walks the
// ordering flipping one column at a time from the background value to the
// instance value; the model-output delta at each flip is that column's
// marginal contribution under the drawn ordering. Averaging over samples
// approximates each column's marginal effect.
//
// Cost per call is samples * (columns+1) model rows, batched into one
// Predict call per sample. Keep the background set small (a few dozen rows
// at most); this runs synchronously on the request path.
type KernelExplainer struct {
	clf        inference.Classifier
	background [][]float64
	samples    int
}

// DefaultSamples balances estimate stability against request latency.
const DefaultSamples = 16

// ZeroBackground builds the conventional all-zero reference set: rows
// baseline rows of the given width. In scaled space zero is the
// training-set mean for every scaled column.
func ZeroBackground(rows, width int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, width)
	}
	return out
}

// NewKernelExplainer validates the background set against the classifier's
// input width.
func NewKernelExplainer(clf inference.Classifier, background [][]float64, samples int) (*KernelExplainer, error) {
	if len(background) == 0 {
		return nil, fmt.Errorf("background set is empty")
	}
	width := clf.InputWidth()
	for i, row := range background {
		if len(row) != width {
			return nil, fmt.Errorf("background row %d has %d columns, model expects %d", i, len(row), width)
		}
	}
	if samples <= 0 {
		samples = DefaultSamples
	}
	return &KernelExplainer{clf: clf, background: background, samples: samples}, nil
}

// Attribute estimates the contribution of every column of vec. The RNG is
// local to the call, so concurrent invocations never share sampling state.
func (k *KernelExplainer) Attribute(ctx context.Context, vec models.ScaledVector) ([]models.Attribution, error) {
	width := k.clf.InputWidth()
	if len(vec.Values) != width {
		return nil, fmt.Errorf("vector has %d columns, model expects %d", len(vec.Values), width)
	}
	if len(vec.Columns) != len(vec.Values) {
		return nil, fmt.Errorf("vector has %d column names for %d values", len(vec.Columns), len(vec.Values))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return k.attribute(ctx, vec, rng)
}

func (k *KernelExplainer) attribute(ctx context.Context, vec models.ScaledVector, rng *rand.Rand) ([]models.Attribution, error) {
	n := len(vec.Values)
	contrib := make([]float64, n)

	for s := 0; s < k.samples; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		base := k.background[rng.Intn(len(k.background))]
		order := rng.Perm(n)

		rows := make([][]float64, n+1)
		current := append([]float64(nil), base...)
		rows[0] = append([]float64(nil), current...)
		for i, col := range order {
			current[col] = vec.Values[col]
			rows[i+1] = append([]float64(nil), current...)
		}

		probs, err := k.clf.Predict(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("evaluate coalition sample: %w", err)
		}
		for i, col := range order {
			contrib[col] += probs[i+1] - probs[i]
		}
	}

	attrs := make([]models.Attribution, n)
	for i := range contrib {
		attrs[i] = models.Attribution{
			Feature: vec.Columns[i],
			Value:   contrib[i] / float64(k.samples),
		}
	}
	return attrs, nil
}
