package utils

import "strings"

// AppError annotates a failure with the operation that produced it, so
// artifact-loading errors name the loader without every caller repeating
// itself.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError. err may be nil when the loader
// itself detected the problem.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}
