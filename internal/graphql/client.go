// Package graphql is a small GraphQL-over-HTTP client for fixed,
// pre-written operation documents.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"resty.dev/v3"
)

// Request is a single GraphQL operation.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// response is the standard GraphQL response envelope.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

// Client sends operations to one GraphQL endpoint.
type Client struct {
	endpoint string
	http     *resty.Client
	log      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithHeaders adds headers sent on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.http.SetHeaders(headers)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// New creates a client for the given endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http: resty.New().
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL operations are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Do sends req and decodes the "data" member of the response into out.
// out may be nil when the caller does not need the result.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()
	log := c.log.With("operation", req.OperationName)
	log.Debug("sending graphql request", "variables", req.Variables)

	var body, errBody response
	res, err := c.http.R().
		SetContext(ctx).
		SetExpectResponseContentType("application/json").
		SetBody(req).
		SetResult(&body).
		SetError(&errBody).
		Post(c.endpoint)
	if err != nil {
		log.Error("graphql request failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("sending %s: %w", req.OperationName, err)
	}

	log.Debug("graphql response received", "status", res.StatusCode(), "duration", time.Since(start))

	if res.IsError() {
		if len(errBody.Errors) > 0 {
			return errBody.Errors
		}
		return &HTTPError{StatusCode: res.StatusCode(), Status: res.Status()}
	}

	if ct := res.Header().Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		log.Error("graphql response is not json", "content_type", ct)
		return &ContentTypeError{StatusCode: res.StatusCode(), ContentType: ct}
	}

	if len(body.Errors) > 0 {
		log.Warn("graphql errors in response", "errors", body.Errors.Error())
		return body.Errors
	}

	if out == nil {
		return nil
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return fmt.Errorf("decoding %s response: %w", req.OperationName, ErrNoData)
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.OperationName, err)
	}
	return nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}
