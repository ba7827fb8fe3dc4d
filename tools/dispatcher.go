package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tiovikram/valyu-mcp/mcp"
	"github.com/tiovikram/valyu-mcp/valyu"
)

// apiErrorPrefix precedes every validation and upstream failure message
const apiErrorPrefix = "API error: "

// API is the subset of the Valyu client used by the dispatcher
type API interface {
	Knowledge(ctx context.Context, req valyu.KnowledgeRequest) (json.RawMessage, error)
	Feedback(ctx context.Context, req valyu.FeedbackRequest) (json.RawMessage, error)
}

var _ API = (*valyu.Client)(nil)

// UnknownToolError reports a call to a tool that is not registered
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "Unknown tool: " + e.Name
}

type handlerFunc func(ctx context.Context, arguments map[string]any) (json.RawMessage, error)

// Dispatcher validates tool arguments, calls the API and wraps the outcome
// in a tool result. Failures are reported inside the result, never as errors.
type Dispatcher struct {
	registry *Registry
	api      API
	handlers map[string]handlerFunc
	logger   *slog.Logger
}

var _ mcp.ToolProvider = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger for the dispatcher
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher for the tools in registry
func NewDispatcher(registry *Registry, api API, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if api == nil {
		return nil, errors.New("API client is required")
	}

	d := &Dispatcher{
		registry: registry,
		api:      api,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	d.handlers = map[string]handlerFunc{
		ToolKnowledge: d.knowledge,
		ToolFeedback:  d.feedback,
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, tool := range registry.List() {
		if _, ok := d.handlers[tool.Name]; !ok {
			return nil, fmt.Errorf("no handler for tool %q", tool.Name)
		}
	}
	return d, nil
}

// ListTools returns the registered tools
func (d *Dispatcher) ListTools() []mcp.Tool {
	return d.registry.List()
}

// CallTool invokes the named tool with raw arguments
func (d *Dispatcher) CallTool(ctx context.Context, name string, arguments map[string]any) mcp.ToolCallResponse {
	start := time.Now()
	logger := d.logger.With("tool", name)

	if _, ok := d.registry.Describe(name); !ok {
		err := &UnknownToolError{Name: name}
		logger.Warn("tool call failed", "kind", "unknown_tool")
		return mcp.NewToolError(err.Error())
	}

	result, err := d.handlers[name](ctx, arguments)
	if err == nil {
		result, err = compact(result)
	}
	if err != nil {
		logger.Warn("tool call failed",
			"kind", errorKind(err),
			"error", err,
			"duration", time.Since(start))
		return mcp.NewToolError(apiErrorPrefix + err.Error())
	}

	logger.Info("tool call succeeded", "duration", time.Since(start))
	return mcp.NewToolResult(string(result))
}

func (d *Dispatcher) knowledge(ctx context.Context, arguments map[string]any) (json.RawMessage, error) {
	req, err := valyu.ParseKnowledgeRequest(arguments)
	if err != nil {
		return nil, err
	}
	return d.api.Knowledge(ctx, req)
}

func (d *Dispatcher) feedback(ctx context.Context, arguments map[string]any) (json.RawMessage, error) {
	req, err := valyu.ParseFeedbackRequest(arguments)
	if err != nil {
		return nil, err
	}
	return d.api.Feedback(ctx, req)
}

// compact strips insignificant whitespace so the text matches a plain JSON encoding
func compact(raw json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("error encoding result: %w", err)
	}
	return buf.Bytes(), nil
}

func errorKind(err error) string {
	var (
		validation *valyu.ValidationError
		upstream   *valyu.UpstreamError
		transport  *valyu.TransportError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &upstream):
		return "upstream"
	case errors.As(err, &transport):
		return "transport"
	default:
		return "internal"
	}
}
