package valyu

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by NewClient when no API key is supplied
var ErrMissingAPIKey = errors.New("valyu: API key is required (set VALYU_API_KEY)")

// ValidationError reports tool arguments that do not satisfy a request schema
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments: %s: %s", e.Field, e.Constraint)
}

// UpstreamError reports a non-success HTTP status from the Valyu API
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return "API request failed: " + e.Status
}

// TransportError reports a failure to reach the Valyu API or to read its response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
