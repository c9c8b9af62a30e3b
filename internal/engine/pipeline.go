// Package engine composes the prediction explanation pipeline: derived
// features, feature transform, inference, attribution, and reason text.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fundsight/explain-engine/internal/explain"
	"github.com/fundsight/explain-engine/internal/inference"
	"github.com/fundsight/explain-engine/internal/metrics"
	"github.com/fundsight/explain-engine/internal/models"
	"github.com/fundsight/explain-engine/internal/reason"
	"github.com/fundsight/explain-engine/internal/transform"
)

// Derivation declares an age feature computed from a raw date field when
// the numeric value is not supplied directly.
type Derivation struct {
	Field     string
	DateField string
}

// Pipeline is the explicitly constructed inference context: every
// collaborator is wired at boot and read-only afterwards, so one Pipeline
// serves all requests concurrently. No package-level state.
type Pipeline struct {
	logger      *slog.Logger
	transformer *transform.Transformer
	predictor   *inference.Predictor
	explainer   explain.Engine
	strategy    reason.Strategy
	outcome     reason.Outcome
	derivations []Derivation
}

// NewPipeline wires the pipeline collaborators.
func NewPipeline(
	logger *slog.Logger,
	transformer *transform.Transformer,
	predictor *inference.Predictor,
	explainer explain.Engine,
	strategy reason.Strategy,
	outcome reason.Outcome,
	derivations []Derivation,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:      logger,
		transformer: transformer,
		predictor:   predictor,
		explainer:   explainer,
		strategy:    strategy,
		outcome:     outcome,
		derivations: append([]Derivation(nil), derivations...),
	}
}

// MissingFields returns the required raw fields the record neither carries
// nor can derive from a configured date field.
func (p *Pipeline) MissingFields(raw models.RawRecord) []string {
	var missing []string
	for _, field := range p.transformer.Requires() {
		if raw.Has(field) {
			continue
		}
		if p.derivable(raw, field) {
			continue
		}
		missing = append(missing, field)
	}
	return missing
}

func (p *Pipeline) derivable(raw models.RawRecord, field string) bool {
	for _, d := range p.derivations {
		if d.Field == field && raw.Has(d.DateField) {
			return true
		}
	}
	return false
}

// Explain runs the full flow for one record: derive, encode, scale,
// predict, attribute, reconstruct display values, generate reasons. Every
// stage is a single attempt; errors propagate without retry and never
// yield a partial explanation.
func (p *Pipeline) Explain(ctx context.Context, raw models.RawRecord) (models.Explanation, error) {
	record := p.applyDerivations(raw)

	encoded, err := p.transformer.Encode(record)
	if err != nil {
		return models.Explanation{}, err
	}
	vec, err := p.transformer.Scale(encoded)
	if err != nil {
		return models.Explanation{}, err
	}

	pred, err := p.predictor.Predict(ctx, vec)
	if err != nil {
		return models.Explanation{}, err
	}
	attrStart := time.Now()
	attrs, err := p.explainer.Attribute(ctx, vec)
	if err != nil {
		return models.Explanation{}, err
	}
	metrics.ObserveAttribution(time.Since(attrStart))

	display, err := p.transformer.InverseDisplay(vec, encoded)
	if err != nil {
		return models.Explanation{}, err
	}

	supporting, opposing := p.strategy.Generate(pred, attrs, display)

	return models.Explanation{
		ID:              uuid.NewString(),
		Label:           p.outcome.LabelText(pred.Label),
		Probability:     pred.Probability,
		PositiveReasons: reason.Texts(supporting),
		NegativeReasons: reason.Texts(opposing),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// applyDerivations fills age fields from date strings for records that do
// not supply the numeric value directly. An unparseable date falls back to
// a zero age; that is lossy, so the fallback is logged.
func (p *Pipeline) applyDerivations(raw models.RawRecord) models.RawRecord {
	if len(p.derivations) == 0 {
		return raw
	}
	record := raw.Clone()
	for _, d := range p.derivations {
		if record.Has(d.Field) {
			continue
		}
		date, err := record.String(d.DateField)
		if err != nil {
			continue
		}
		age := transform.AgeInYears(date)
		if age == 0.0 && date != "" {
			p.logger.Warn("date parse failed, using zero age",
				slog.String("field", d.Field), slog.String("date", date))
		}
		record[d.Field] = age
	}
	return record
}
