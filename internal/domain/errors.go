package domain

import "errors"

// Domain errors
var (
	ErrInvalidToken           = errors.New("invalid token")
	ErrInvalidFile            = errors.New("invalid file")
	ErrSameOutputPath         = errors.New("output path must differ from input path")
	ErrEmptyGeneration        = errors.New("text generation returned no content")
	ErrGeneratorNotConfigured = errors.New("text generator not configured")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
