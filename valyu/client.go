// Package valyu is a client for the Valyu knowledge and feedback API.
package valyu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tiovikram/valyu-mcp/internal"
)

// Client performs authenticated requests against the Valyu API.
// It is safe for concurrent use.
type Client struct {
	baseURL   string
	knowledge Endpoint
	feedback  Endpoint
	client    *http.Client
	logger    *slog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client) error

// WithHTTPClient sets the underlying HTTP client.
// Its transport is wrapped to attach the API key.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) error {
		if client == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.client = client
		return nil
	}
}

// WithBaseURL overrides the API host declared by the OpenAPI description
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) error {
		if baseURL == "" {
			return nil
		}
		c.baseURL = strings.TrimSuffix(baseURL, "/")
		return nil
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates a client authenticating with apiKey.
// It fails without touching the network when apiKey is empty.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: catalog.BaseURL,
		client:  &http.Client{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	var ok bool
	if c.knowledge, ok = catalog.Endpoint(OperationKnowledge); !ok {
		return nil, fmt.Errorf("API description has no %q operation", OperationKnowledge)
	}
	if c.feedback, ok = catalog.Endpoint(OperationFeedback); !ok {
		return nil, fmt.Errorf("API description has no %q operation", OperationFeedback)
	}

	// Copy so the caller's client is not modified
	authed := *c.client
	authed.Transport = &internal.HeaderTransport{
		Base: c.client.Transport,
		Headers: http.Header{
			"X-Api-Key":    []string{apiKey},
			"Content-Type": []string{"application/json"},
		},
	}
	c.client = &authed

	return c, nil
}

// Knowledge searches proprietary and/or web sources.
// The response body is returned as received.
func (c *Client) Knowledge(ctx context.Context, req KnowledgeRequest) (json.RawMessage, error) {
	return c.do(ctx, OperationKnowledge, c.knowledge, req)
}

// Feedback submits feedback and sentiment for a transaction.
// The response body is returned as received.
func (c *Client) Feedback(ctx context.Context, req FeedbackRequest) (json.RawMessage, error) {
	return c.do(ctx, OperationFeedback, c.feedback, req)
}

func (c *Client) do(ctx context.Context, operation string, endpoint Endpoint, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, endpoint.Method, c.baseURL+endpoint.Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %w", operation, err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: operation, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: operation, Err: fmt.Errorf("error reading response: %w", err)}
	}

	c.logger.Debug("upstream response",
		"operation", operation,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	if !json.Valid(data) {
		return nil, &TransportError{Op: operation, Err: errors.New("error decoding response: body is not valid JSON")}
	}
	return json.RawMessage(data), nil
}

// statusText returns the reason phrase of resp, e.g. "Internal Server Error"
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = strconv.Itoa(resp.StatusCode)
	}
	return text
}
