package transform

import "fmt"

// CategoryEncoder maps categorical strings to the numeric codes assigned at
// training time and back.
type CategoryEncoder interface {
	Transform(feature, value string) (float64, error)
	Inverse(code float64) (string, error)
}

// LabelEncoder assigns codes by vocabulary index, mirroring a fitted
// label encoder: Classes[i] encodes to float64(i).
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// NewLabelEncoder builds an encoder over the training-time vocabulary.
func NewLabelEncoder(classes []string) *LabelEncoder {
	enc := &LabelEncoder{Classes: classes}
	enc.buildIndex()
	return enc
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, class := range e.Classes {
		e.index[class] = i
	}
}

// Transform returns the code for value, or *UnknownCategoryError if the
// value was not part of the fitted vocabulary.
func (e *LabelEncoder) Transform(feature, value string) (float64, error) {
	if e.index == nil {
		e.buildIndex()
	}
	i, ok := e.index[value]
	if !ok {
		return 0, &UnknownCategoryError{Feature: feature, Value: value}
	}
	return float64(i), nil
}

// Inverse returns the class for a code produced by Transform.
func (e *LabelEncoder) Inverse(code float64) (string, error) {
	i := int(code)
	if i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("code %v outside vocabulary of %d classes", code, len(e.Classes))
	}
	return e.Classes[i], nil
}

// OrdinalEncoder encodes an ordered vocabulary (e.g. education levels).
// Codes follow the explicit ordering rather than first-seen order, but the
// transform contract is identical to LabelEncoder's.
type OrdinalEncoder struct {
	Ordered []string `json:"ordered"`

	index map[string]int
}

// NewOrdinalEncoder builds an encoder over an explicitly ordered vocabulary.
func NewOrdinalEncoder(ordered []string) *OrdinalEncoder {
	enc := &OrdinalEncoder{Ordered: ordered}
	enc.buildIndex()
	return enc
}

func (e *OrdinalEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Ordered))
	for i, value := range e.Ordered {
		e.index[value] = i
	}
}

// Transform returns the ordinal code for value.
func (e *OrdinalEncoder) Transform(feature, value string) (float64, error) {
	if e.index == nil {
		e.buildIndex()
	}
	i, ok := e.index[value]
	if !ok {
		return 0, &UnknownCategoryError{Feature: feature, Value: value}
	}
	return float64(i), nil
}

// Inverse returns the category for an ordinal code.
func (e *OrdinalEncoder) Inverse(code float64) (string, error) {
	i := int(code)
	if i < 0 || i >= len(e.Ordered) {
		return "", fmt.Errorf("code %v outside vocabulary of %d classes", code, len(e.Ordered))
	}
	return e.Ordered[i], nil
}
