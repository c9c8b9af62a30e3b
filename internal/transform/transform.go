// Package transform converts raw records into the exact numeric form the
// classifier was trained on, and back into original units for display. The
// fitted encoder and scaler are loaded once at startup and never mutated.
package transform

import (
	"github.com/fundsight/explain-engine/internal/models"
)

// Transformer composes categorical encoding, standard scaling, and the
// passthrough columns appended to the model input unscaled (e.g. a binary
// popularity flag). It is immutable after construction and safe for
// concurrent use.
type Transformer struct {
	scaler      *StandardScaler
	encoders    map[string]CategoryEncoder
	passthrough []string
}

// NewTransformer wires a fitted scaler, per-feature category encoders, and
// the ordered list of columns appended after the scaled block.
func NewTransformer(scaler *StandardScaler, encoders map[string]CategoryEncoder, passthrough []string) *Transformer {
	if encoders == nil {
		encoders = map[string]CategoryEncoder{}
	}
	return &Transformer{
		scaler:      scaler,
		encoders:    encoders,
		passthrough: append([]string(nil), passthrough...),
	}
}

// Columns returns the full model-input column order: scaler columns in fit
// order followed by passthrough columns.
func (t *Transformer) Columns() []string {
	cols := append([]string(nil), t.scaler.FeatureNames...)
	return append(cols, t.passthrough...)
}

// Requires lists every raw field the transformer consumes.
func (t *Transformer) Requires() []string {
	return t.Columns()
}

// Encode replaces categorical fields with their fitted numeric codes and
// coerces the remaining required fields to numbers. The original values are
// retained for display; encoding never mutates the input record. Returns
// *UnknownCategoryError for vocabulary misses and *models.ValidationError
// for missing or non-coercible fields.
func (t *Transformer) Encode(raw models.RawRecord) (models.EncodedRecord, error) {
	enc := models.EncodedRecord{
		Values:   make(map[string]float64, len(t.scaler.FeatureNames)+len(t.passthrough)),
		Original: make(map[string]any, len(raw)),
	}
	for k, v := range raw {
		enc.Original[k] = v
	}

	var invalid []string
	for _, name := range t.Columns() {
		if encoder, ok := t.encoders[name]; ok {
			value, err := raw.String(name)
			if err != nil {
				invalid = append(invalid, name)
				continue
			}
			code, err := encoder.Transform(name, value)
			if err != nil {
				return models.EncodedRecord{}, err
			}
			enc.Values[name] = code
			continue
		}
		value, err := raw.Float(name)
		if err != nil {
			invalid = append(invalid, name)
			continue
		}
		enc.Values[name] = value
	}
	if len(invalid) > 0 {
		return models.EncodedRecord{}, &models.ValidationError{Fields: invalid, Msg: "missing or malformed fields"}
	}
	return enc, nil
}

// Scale produces the model-input vector: the fitted scaler applied to its
// declared columns, then passthrough columns appended verbatim.
func (t *Transformer) Scale(enc models.EncodedRecord) (models.ScaledVector, error) {
	scaled, err := t.scaler.Transform(enc.Values)
	if err != nil {
		return models.ScaledVector{}, err
	}
	values := make([]float64, 0, t.scaler.Width()+len(t.passthrough))
	values = append(values, scaled...)
	for _, name := range t.passthrough {
		v, ok := enc.Values[name]
		if !ok {
			return models.ScaledVector{}, &ShapeMismatchError{Missing: []string{name}}
		}
		values = append(values, v)
	}
	return models.ScaledVector{Columns: t.Columns(), Values: values}, nil
}

// InverseDisplay reconstructs original-scale values for presentation:
// inverse-scales the scaled block, re-attaches passthrough fields verbatim,
// and restores the original categorical strings instead of their codes.
func (t *Transformer) InverseDisplay(vec models.ScaledVector, enc models.EncodedRecord) (models.DisplayValues, error) {
	width := t.scaler.Width()
	if len(vec.Values) != width+len(t.passthrough) {
		return nil, &ShapeMismatchError{Want: width + len(t.passthrough), Got: len(vec.Values)}
	}

	inversed, err := t.scaler.InverseTransform(vec.Values[:width])
	if err != nil {
		return nil, err
	}

	display := make(models.DisplayValues, len(inversed)+len(t.passthrough))
	for name, v := range inversed {
		display[name] = v
	}
	for i, name := range t.passthrough {
		display[name] = vec.Values[width+i]
	}
	for name := range t.encoders {
		if original, ok := enc.Original[name]; ok {
			display[name] = original
		}
	}
	return display, nil
}
