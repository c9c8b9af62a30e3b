// Package inference wraps the loaded binary classifier and thresholds its
// probability output into a label.
package inference

import "context"

// Classifier scores batches of already-transformed rows. Implementations
// are read-only after construction and safe for concurrent use.
type Classifier interface {
	// Predict returns one probability in [0,1] per input row.
	Predict(ctx context.Context, rows [][]float64) ([]float64, error)
	// InputWidth is the column count the model was trained on.
	InputWidth() int
	// Close releases backend resources.
	Close() error
}
