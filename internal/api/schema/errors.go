package schema

import "fmt"

var emptyMap = map[string]any{}

var (
	ErrInternal = &Error{
		Type:    "generic.internal",
		Message: "An internal error occurred.",
		Details: emptyMap,
	}
	ErrNotFound = &Error{
		Type:    "generic.notFound",
		Message: "Resource not found.",
		Details: emptyMap,
	}
	ErrMethodNotAllowed = &Error{
		Type:    "generic.methodNotAllowed",
		Message: "Method not allowed.",
		Details: emptyMap,
	}
	ErrUpstreamUnavailable = func(reason string) *Error {
		return &Error{
			Type:    "upstream.unavailable",
			Message: "The pokemon service could not be reached. Please try again.",
			Details: map[string]any{
				"reason":    reason,
				"retryable": true,
			},
		}
	}
	ErrValidation = func(field, message string) *Error {
		return &Error{
			Type:    "validation.pokemon.invalid",
			Message: fmt.Sprintf("The value of '%s' is invalid: %s.", field, message),
			Details: map[string]any{
				"field": field,
			},
		}
	}
)

// ErrorResponse represents the response structure sent by the UI API whenever errors occurred
type ErrorResponse struct {
	Status int      `json:"status"`
	Errors []*Error `json:"errors"`
}

// Error represents a single error present in the ErrorResponse
type Error struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}
