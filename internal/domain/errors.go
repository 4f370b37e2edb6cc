package domain

import "fmt"

// ValidationError indicates a user-caused problem with request input.
type ValidationError struct {
	Message string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates a requested resource does not exist.
type NotFoundError struct {
	Message string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ProviderError indicates an upstream provider call failed or returned a
// non-success response. It carries the provider's status so the caller can
// surface it unchanged. Provider errors abort the whole request; they are
// never retried here.
type ProviderError struct {
	Provider   string
	StatusCode int
	Detail     string
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider string, statusCode int, detail string) *ProviderError {
	return &ProviderError{Provider: provider, StatusCode: statusCode, Detail: detail}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Detail)
}

// OccupancyUnavailableError indicates the people-counting engine is not
// configured or not ready. It is isolated to the affected hospital's live
// capture; siblings keep processing.
type OccupancyUnavailableError struct {
	Message string
}

// NewOccupancyUnavailableError creates a new OccupancyUnavailableError.
func NewOccupancyUnavailableError(message string) *OccupancyUnavailableError {
	return &OccupancyUnavailableError{Message: message}
}

func (e *OccupancyUnavailableError) Error() string {
	return e.Message
}
