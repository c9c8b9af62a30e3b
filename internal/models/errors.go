package models

import (
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed input fields. It maps to a
// client error at the API boundary and is never retried.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("invalid input: %s: %s", e.Msg, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("invalid input: %s", e.Msg)
}
