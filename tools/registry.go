// Package tools declares the MCP tools backed by the Valyu API and
// dispatches calls to them.
package tools

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/tiovikram/valyu-mcp/mcp"
	"github.com/tiovikram/valyu-mcp/valyu"
)

// Tool names
const (
	ToolKnowledge = "knowledge"
	ToolFeedback  = "feedback"
)

// Registry is the fixed, ordered set of tools exposed by the server.
// It is read-only after construction.
type Registry struct {
	tools []mcp.Tool
	index map[string]int
}

// NewRegistry declares the knowledge and feedback tools, in that order.
// Each input schema is resolved up front so a malformed declaration fails at startup.
func NewRegistry() (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, tool := range []mcp.Tool{knowledgeTool(), feedbackTool()} {
		if _, err := tool.InputSchema.Resolve(nil); err != nil {
			return nil, fmt.Errorf("invalid input schema for tool %q: %w", tool.Name, err)
		}
		if _, dup := r.index[tool.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", tool.Name)
		}
		r.index[tool.Name] = len(r.tools)
		r.tools = append(r.tools, tool)
	}
	return r, nil
}

// List returns every tool in declaration order
func (r *Registry) List() []mcp.Tool {
	return slices.Clone(r.tools)
}

// Describe returns the tool registered under name
func (r *Registry) Describe(name string) (mcp.Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return mcp.Tool{}, false
	}
	return r.tools[i], true
}

func knowledgeTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolKnowledge,
		Description: "Search proprietary and/or web sources for information based on the supplied query.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query":       {Type: "string"},
				"search_type": {Type: "string", Enum: enum(valyu.SearchTypes)},
				"max_price":   {Type: "number"},
				"data_sources": {
					Type:  "array",
					Items: &jsonschema.Schema{Type: "string"},
				},
				"max_num_results": {
					Type:    "integer",
					Minimum: ptr(1.0),
					Maximum: ptr(float64(valyu.MaxNumResultsLimit)),
					Default: rawJSON(valyu.DefaultMaxNumResults),
				},
				"similarity_threshold": {
					Type:    "number",
					Minimum: ptr(0.0),
					Maximum: ptr(1.0),
					Default: rawJSON(valyu.DefaultSimilarityThreshold),
				},
				"query_rewrite": {
					Type:    "boolean",
					Default: rawJSON(valyu.DefaultQueryRewrite),
				},
			},
			Required: []string{"query", "search_type", "max_price"},
		},
	}
}

func feedbackTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolFeedback,
		Description: "Submit user feedback and sentiment for a transaction.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tx_id":     {Type: "string"},
				"feedback":  {Type: "string"},
				"sentiment": {Type: "string", Enum: enum(valyu.Sentiments)},
			},
			Required: []string{"tx_id", "feedback", "sentiment"},
		},
	}
}

func enum(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func rawJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
