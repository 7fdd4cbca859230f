package generation

import "fmt"

// APICallError represents a failure talking to the model provider
type APICallError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: API call failed: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: API call failed: %s", e.Operation, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a model response that is not the expected JSON shape
type ParseError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: parse error: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: parse error: %s", e.Operation, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an input rejected before any call is made
type ValidationError struct {
	Operation string
	Field     string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation error in %s: %s", e.Operation, e.Field, e.Message)
}
