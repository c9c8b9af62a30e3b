// Package reason turns signed attributions into ranked, human-readable
// justification sentences partitioned by polarity.
package reason

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/fundsight/explain-engine/internal/models"
)

// Strategy generates reason entries from attributions and reconstructed
// display values. The returned sequences are the Supporting (contribution
// > 0) and Opposing (<= 0) partitions.
type Strategy interface {
	Generate(pred models.PredictionResult, attrs []models.Attribution, display models.DisplayValues) (supporting, opposing []models.ReasonEntry)
}

// Outcome carries the label wording both strategies phrase reasons around.
type Outcome struct {
	// PositiveLabel and NegativeLabel are the display labels, e.g.
	// "Sukses" / "Gagal" or "Disetujui" / "Ditolak".
	PositiveLabel string
	NegativeLabel string
}

// LabelText returns the display label for a prediction.
func (o Outcome) LabelText(label models.Label) string {
	if label == models.LabelPositive {
		return o.PositiveLabel
	}
	return o.NegativeLabel
}

// RankedStrategy emits every attribution as a sentence, ordered by
// descending absolute contribution, partitioned by sign. It is
// deterministic: identical inputs produce identical text.
type RankedStrategy struct {
	labels  *Labels
	outcome Outcome
}

// NewRankedStrategy builds the default ranked/partitioned generator.
func NewRankedStrategy(labels *Labels, outcome Outcome) *RankedStrategy {
	return &RankedStrategy{labels: labels, outcome: outcome}
}

// Generate implements Strategy.
func (s *RankedStrategy) Generate(pred models.PredictionResult, attrs []models.Attribution, display models.DisplayValues) ([]models.ReasonEntry, []models.ReasonEntry) {
	ranked := rankByMagnitude(attrs)

	var supporting, opposing []models.ReasonEntry
	for _, attr := range ranked {
		entry := s.entry(pred, attr, display)
		if entry.Polarity == models.PolaritySupporting {
			supporting = append(supporting, entry)
		} else {
			opposing = append(opposing, entry)
		}
	}
	return supporting, opposing
}

func (s *RankedStrategy) entry(pred models.PredictionResult, attr models.Attribution, display models.DisplayValues) models.ReasonEntry {
	value := FormatValue(displayValue(display, attr.Feature))
	featureLabel := s.labels.DisplayName(attr.Feature)
	unit := s.labels.Unit(attr.Feature)

	polarity := models.PolarityOpposing
	if attr.Value > 0 {
		polarity = models.PolaritySupporting
	}

	text := fmt.Sprintf("'%s' (%s%s) %s",
		featureLabel, value, unit, s.direction(pred.Label, attr.Value))

	return models.ReasonEntry{
		FeatureLabel: featureLabel,
		DisplayValue: value,
		Text:         text,
		Polarity:     polarity,
		Contribution: attr.Value,
	}
}

// direction words the contribution relative to the predicted outcome: for
// the positive label a positive contribution supports the outcome; for the
// negative label a positive contribution reduces its risk.
func (s *RankedStrategy) direction(label models.Label, contribution float64) string {
	if label == models.LabelPositive {
		if contribution > 0 {
			return fmt.Sprintf("mendukung potensi %s", strings.ToLower(s.outcome.PositiveLabel))
		}
		return fmt.Sprintf("mengurangi potensi %s", strings.ToLower(s.outcome.PositiveLabel))
	}
	if contribution > 0 {
		return fmt.Sprintf("mengurangi risiko %s", strings.ToLower(s.outcome.NegativeLabel))
	}
	return fmt.Sprintf("memperkuat risiko %s", strings.ToLower(s.outcome.NegativeLabel))
}

// SampledStrategy reproduces the legacy behaviour: a uniform sample of at
// most n attributions, worded with the simpler raise/lower phrasing. Kept
// as a pluggable alternative rather than a duplicated pipeline. Not
// deterministic; each call draws a fresh sample.
type SampledStrategy struct {
	labels  *Labels
	outcome Outcome
	n       int
}

// NewSampledStrategy builds the legacy sampled generator. n bounds the
// number of emitted reasons.
func NewSampledStrategy(labels *Labels, outcome Outcome, n int) *SampledStrategy {
	if n <= 0 {
		n = 5
	}
	return &SampledStrategy{labels: labels, outcome: outcome, n: n}
}

// Generate implements Strategy.
func (s *SampledStrategy) Generate(pred models.PredictionResult, attrs []models.Attribution, display models.DisplayValues) ([]models.ReasonEntry, []models.ReasonEntry) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sampled := append([]models.Attribution(nil), attrs...)
	rng.Shuffle(len(sampled), func(i, j int) { sampled[i], sampled[j] = sampled[j], sampled[i] })
	if len(sampled) > s.n {
		sampled = sampled[:s.n]
	}

	labelText := strings.ToLower(s.outcome.LabelText(pred.Label))
	var supporting, opposing []models.ReasonEntry
	for _, attr := range sampled {
		direction := "menurunkan"
		polarity := models.PolarityOpposing
		if attr.Value > 0 {
			direction = "meningkatkan"
			polarity = models.PolaritySupporting
		}
		featureLabel := s.labels.DisplayName(attr.Feature)
		value := FormatValue(displayValue(display, attr.Feature))
		entry := models.ReasonEntry{
			FeatureLabel: featureLabel,
			DisplayValue: value,
			Text:         fmt.Sprintf("%s (%s) %s kemungkinan %s", featureLabel, value, direction, labelText),
			Polarity:     polarity,
			Contribution: attr.Value,
		}
		if polarity == models.PolaritySupporting {
			supporting = append(supporting, entry)
		} else {
			opposing = append(opposing, entry)
		}
	}
	return supporting, opposing
}

// rankByMagnitude orders attributions by descending |contribution|, stable
// so equal magnitudes keep original column order.
func rankByMagnitude(attrs []models.Attribution) []models.Attribution {
	ranked := append([]models.Attribution(nil), attrs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Value) > math.Abs(ranked[j].Value)
	})
	return ranked
}

func displayValue(display models.DisplayValues, feature string) any {
	if v, ok := display[feature]; ok {
		return v
	}
	return 0.0
}

// Texts extracts the sentence from each entry, preserving order.
func Texts(entries []models.ReasonEntry) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Text
	}
	return out
}
