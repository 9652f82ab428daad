package domain

import (
	"fmt"
)

// ValidationError reports a sub-record whose numeric field is outside its
// declared domain. Validation failures are absorbed by the owning scorer:
// the record is skipped with a logged warning and never aborts the subject.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ConfigurationError reports a broken deployment: a use case's weight
// vector not summing to 1.0, or a malformed cap table. It is fatal at
// startup and never raised per scoring call.
type ConfigurationError struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(component, message string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Message:   message,
	}
}
