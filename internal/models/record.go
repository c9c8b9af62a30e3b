package models

import (
	"fmt"
	"strconv"
)

// RawRecord is a single flat input record mapping feature names to values.
// Values may be float64, int, bool, or category strings depending on the
// feature; the transform layer decides how each field is interpreted.
type RawRecord map[string]any

// Float coerces the named field to a float64. Integers, booleans, and
// numeric strings (as delivered by HTML forms) are accepted.
func (r RawRecord) Float(name string) (float64, error) {
	v, ok := r[name]
	if !ok {
		return 0, fmt.Errorf("field %q missing", name)
	}
	switch value := v.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case bool:
		if value {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not numeric: %q", name, value)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q has unsupported type %T", name, v)
	}
}

// String returns the named field as a category string.
func (r RawRecord) String(name string) (string, error) {
	v, ok := r[name]
	if !ok {
		return "", fmt.Errorf("field %q missing", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string: %T", name, v)
	}
	return s, nil
}

// Has reports whether the record carries the named field.
func (r RawRecord) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Clone returns a shallow copy so derivations never mutate caller state.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// EncodedRecord is a RawRecord after categorical encoding. Values holds
// every model-facing field as a number; Original retains the pre-encoding
// values (notably categorical strings) for display reconstruction.
type EncodedRecord struct {
	Values   map[string]float64
	Original map[string]any
}

// ScaledVector is the model-input row: scaler columns in fit order followed
// by any passthrough columns appended unscaled. Values[i] corresponds to
// Columns[i] throughout the pipeline, including attribution output.
type ScaledVector struct {
	Columns []string
	Values  []float64
}

// DisplayValues maps feature names back to original-scale values for
// presentation. Never fed back into the model.
type DisplayValues map[string]any
