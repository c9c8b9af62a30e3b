package transform

import (
	"fmt"
	"strings"
)

// UnknownCategoryError reports a categorical value absent from the
// training-time vocabulary. It is surfaced rather than recovered: silently
// substituting a default code would corrupt the explanation downstream.
type UnknownCategoryError struct {
	Feature string
	Value   string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for feature %q", e.Value, e.Feature)
}

// ShapeMismatchError reports a contract violation between the record and
// the fitted scaler or encoder: required columns missing or a vector of the
// wrong width. This indicates a deployment or versioning defect.
type ShapeMismatchError struct {
	Want    int
	Got     int
	Missing []string
}

func (e *ShapeMismatchError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("vector width mismatch: want %d columns, got %d", e.Want, e.Got)
}
