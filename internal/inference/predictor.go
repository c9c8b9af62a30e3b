package inference

import (
	"context"
	"fmt"

	"github.com/fundsight/explain-engine/internal/models"
)

// InferenceError reports a contract violation between the transform output
// and the loaded model, or a backend failure. It is fatal for the request;
// no partial result is produced and the request is never retried.
type InferenceError struct {
	Msg string
	Err error
}

func (e *InferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("inference: %s", e.Msg)
	}
	return fmt.Sprintf("inference: %s: %v", e.Msg, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Predictor thresholds a classifier's probability into a binary label. The
// threshold is fixed at strictly greater than 0.5: a probability of exactly
// 0.5 classifies negative.
type Predictor struct {
	clf Classifier
}

// NewPredictor wraps a loaded classifier.
func NewPredictor(clf Classifier) *Predictor {
	return &Predictor{clf: clf}
}

// Predict scores a single record as a one-row batch.
func (p *Predictor) Predict(ctx context.Context, vec models.ScaledVector) (models.PredictionResult, error) {
	if want, got := p.clf.InputWidth(), len(vec.Values); want != got {
		return models.PredictionResult{}, &InferenceError{
			Msg: fmt.Sprintf("input vector has %d columns, model expects %d", got, want),
		}
	}

	probs, err := p.clf.Predict(ctx, [][]float64{vec.Values})
	if err != nil {
		return models.PredictionResult{}, &InferenceError{Msg: "model invocation failed", Err: err}
	}
	if len(probs) != 1 {
		return models.PredictionResult{}, &InferenceError{
			Msg: fmt.Sprintf("model returned %d probabilities for one row", len(probs)),
		}
	}

	result := models.PredictionResult{Probability: probs[0], Label: models.LabelNegative}
	if probs[0] > 0.5 {
		result.Label = models.LabelPositive
	}
	return result, nil
}
