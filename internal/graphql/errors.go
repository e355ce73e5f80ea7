package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// Error is one entry of a GraphQL "errors" array.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Errors is returned when the server answers with a non-empty "errors" array.
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return strings.Join(msgs, "; ")
}

// HTTPError is returned for a non-2xx status without a GraphQL error body.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected http status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected http status: %d", e.StatusCode)
}

// ErrNoData is returned when a successful response carries neither "data"
// nor "errors" and the caller asked for a result.
var ErrNoData = errors.New("response has no data")

// ContentTypeError is returned for a 2xx response that is not JSON, such as
// an HTML page served by a proxy in front of the endpoint.
type ContentTypeError struct {
	StatusCode  int
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unexpected content type %q (status %d)", e.ContentType, e.StatusCode)
}
