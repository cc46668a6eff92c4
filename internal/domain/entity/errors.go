package entity

import "errors"

// ErrInvalidInput is the class of every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError names the offending field. Its text reads as a sentence
// about the field, e.g. "brand is required".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
