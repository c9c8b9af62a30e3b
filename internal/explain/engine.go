// Package explain estimates per-feature contributions to a single
// prediction. Engines are model-agnostic: they only observe classifier
// output under perturbed inputs.
package explain

import (
	"context"

	"github.com/fundsight/explain-engine/internal/models"
)

// Engine computes signed per-column contributions for one scaled vector.
// The output is aligned index-for-index with the vector's columns,
// including trailing passthrough columns. Sampling-based implementations
// are not deterministic run-to-run; the ranking among clearly separated
// features is stable, exact magnitudes are not. Implementations must be
// safe for concurrent calls.
type Engine interface {
	Attribute(ctx context.Context, vec models.ScaledVector) ([]models.Attribution, error)
}
