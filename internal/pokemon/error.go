package pokemon

import (
	"errors"
	"fmt"
)

// ValidationError represents user input that is rejected before it is sent to the remote API
type ValidationError struct {
	Field   string
	Message string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Message)
}

// TransportError represents a failed request to the remote API.
// StatusCode is 0 if no response was received at all.
type TransportError struct {
	Op         string
	StatusCode int
	Wrapping   error
}

func (err *TransportError) Error() string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("%s: remote API responded with status %d", err.Op, err.StatusCode)
	}
	return fmt.Sprintf("%s: %v", err.Op, err.Wrapping)
}

func (err *TransportError) Unwrap() error {
	return err.Wrapping
}

// ParseError represents a response body of the remote API that could not be decoded
type ParseError struct {
	Op       string
	Wrapping error
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response body: %v", err.Op, err.Wrapping)
}

func (err *ParseError) Unwrap() error {
	return err.Wrapping
}

// IsUpstream reports whether err originates from talking to the remote API.
// Parse errors count as upstream errors as the user can do nothing but retry either way.
func IsUpstream(err error) bool {
	var transportErr *TransportError
	var parseErr *ParseError
	return errors.As(err, &transportErr) || errors.As(err, &parseErr)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
