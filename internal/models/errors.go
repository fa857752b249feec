package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateKey         = errors.New("duplicate key violation")
	ErrInvalidID            = errors.New("invalid ID format")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingEntity        = errors.New("missing entity")
	ErrInsufficientData     = errors.New("insufficient data")
)

// ValidationError carries a machine-readable code alongside a message.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidationError creates a ValidationError.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidConfigf wraps ErrInvalidConfiguration with a formatted reason.
func InvalidConfigf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// MissingTeam wraps ErrMissingEntity for an unknown team.
func MissingTeam(teamID int64) error {
	return fmt.Errorf("%w: team %d", ErrMissingEntity, teamID)
}
