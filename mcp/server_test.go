package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiovikram/valyu-mcp/jsonrpc"
)

type stubTools struct {
	calls []ToolCallRequest
}

func (s *stubTools) ListTools() []Tool {
	return []Tool{
		{Name: "knowledge", Description: "Search", InputSchema: &jsonschema.Schema{Type: "object"}},
		{Name: "feedback", Description: "Feedback", InputSchema: &jsonschema.Schema{Type: "object"}},
	}
}

func (s *stubTools) CallTool(_ context.Context, name string, arguments map[string]interface{}) ToolCallResponse {
	s.calls = append(s.calls, ToolCallRequest{Name: name, Arguments: arguments})
	if name != "knowledge" {
		return NewToolError("Unknown tool: " + name)
	}
	return NewToolResult(`{"result":"ok"}`)
}

func setupTestServer(t *testing.T) (*Server, *stubTools) {
	t.Helper()

	tools := &stubTools{}
	server, err := NewServer(tools, WithServerInfo("valyu-mcp-server", "1.0.0"))
	require.NoError(t, err)
	return server, tools
}

// decodeResult round-trips a response result into v
func decodeResult(t *testing.T, response jsonrpc.Response, v interface{}) {
	t.Helper()
	resultBytes, err := json.Marshal(response.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(resultBytes, v))
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestServer_HandleInitialize(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		name        string
		params      string
		wantVersion string
	}{
		{name: "latest version", params: `{"protocolVersion":"2025-06-18","clientInfo":{"name":"host","version":"1"}}`, wantVersion: "2025-06-18"},
		{name: "older supported version", params: `{"protocolVersion":"2024-11-05"}`, wantVersion: "2024-11-05"},
		{name: "unsupported version", params: `{"protocolVersion":"1999-01-01"}`, wantVersion: Version},
		{name: "no params", params: ``, wantVersion: Version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params json.RawMessage
			if tt.params != "" {
				params = json.RawMessage(tt.params)
			}
			response := server.Handle(context.Background(), jsonrpc.NewRequest("initialize", params, 1))

			assert.Equal(t, "2.0", response.Version)
			assert.Equal(t, 1, response.ID.Value())
			assert.Nil(t, response.Error)

			var result InitializeResponse
			decodeResult(t, response, &result)
			assert.Equal(t, tt.wantVersion, result.ProtocolVersion)
			assert.Equal(t, "valyu-mcp-server", result.ServerInfo.Name)
			assert.Equal(t, "1.0.0", result.ServerInfo.Version)
			require.NotNil(t, result.Capabilities.Tools)
			assert.False(t, result.Capabilities.Tools.ListChanged)
		})
	}
}

func TestServer_HandleInitializeInvalidParams(t *testing.T) {
	server, _ := setupTestServer(t)

	response := server.Handle(context.Background(), jsonrpc.NewRequest("initialize", json.RawMessage(`[1,2]`), 1))
	require.NotNil(t, response.Error)
	assert.Equal(t, jsonrpc.ErrInvalidParams, response.Error.Code)
}

func TestHandlePing(t *testing.T) {
	server, _ := setupTestServer(t)

	response := server.Handle(context.Background(), jsonrpc.NewRequest("ping", nil, "abc"))
	assert.Equal(t, "abc", response.ID.Value())
	assert.Nil(t, response.Error)

	data, err := json.Marshal(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":{},"id":"abc"}`, string(data))
}

func TestHandleToolsList(t *testing.T) {
	server, tools := setupTestServer(t)

	response := server.Handle(context.Background(), jsonrpc.NewRequest("tools/list", nil, 1))

	assert.Equal(t, "2.0", response.Version)
	assert.Equal(t, 1, response.ID.Value())
	assert.Nil(t, response.Error)

	var toolsResp struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	decodeResult(t, response, &toolsResp)

	require.Len(t, toolsResp.Tools, 2)
	assert.Equal(t, "knowledge", toolsResp.Tools[0].Name)
	assert.Equal(t, "feedback", toolsResp.Tools[1].Name)
	assert.Equal(t, "object", toolsResp.Tools[0].InputSchema["type"])
	assert.Empty(t, tools.calls)
}

func TestHandleToolsCall(t *testing.T) {
	tests := []struct {
		name     string
		request  jsonrpc.Request
		validate func(*testing.T, jsonrpc.Response, *stubTools)
	}{
		{
			name:    "successful call",
			request: jsonrpc.NewRequest("tools/call", json.RawMessage(`{"name": "knowledge", "arguments": {"query": "q", "max_price": 5}}`), 1),
			validate: func(t *testing.T, response jsonrpc.Response, tools *stubTools) {
				assert.Nil(t, response.Error)

				var result ToolCallResponse
				decodeResult(t, response, &result)
				require.Len(t, result.Content, 1)
				assert.False(t, result.IsError)
				assert.Equal(t, "text", result.Content[0].Type)
				assert.Equal(t, `{"result":"ok"}`, result.Content[0].Text)

				require.Len(t, tools.calls, 1)
				assert.Equal(t, "knowledge", tools.calls[0].Name)
				assert.Equal(t, "q", tools.calls[0].Arguments["query"])
				assert.Equal(t, float64(5), tools.calls[0].Arguments["max_price"])
			},
		},
		{
			name:    "tool error is a result, not a protocol error",
			request: jsonrpc.NewRequest("tools/call", json.RawMessage(`{"name": "nonexistent"}`), 2),
			validate: func(t *testing.T, response jsonrpc.Response, tools *stubTools) {
				assert.Nil(t, response.Error)

				var result ToolCallResponse
				decodeResult(t, response, &result)
				assert.True(t, result.IsError)
				require.Len(t, result.Content, 1)
				assert.Equal(t, "Unknown tool: nonexistent", result.Content[0].Text)
			},
		},
		{
			name:    "malformed params",
			request: jsonrpc.NewRequest("tools/call", json.RawMessage(`"knowledge"`), 3),
			validate: func(t *testing.T, response jsonrpc.Response, tools *stubTools) {
				require.NotNil(t, response.Error)
				assert.Equal(t, jsonrpc.ErrInvalidParams, response.Error.Code)
				assert.Empty(t, tools.calls)
			},
		},
		{
			name:    "missing params",
			request: jsonrpc.NewRequest("tools/call", nil, 4),
			validate: func(t *testing.T, response jsonrpc.Response, tools *stubTools) {
				require.NotNil(t, response.Error)
				assert.Equal(t, jsonrpc.ErrInvalidParams, response.Error.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, tools := setupTestServer(t)
			response := server.Handle(context.Background(), tt.request)
			assert.Equal(t, "2.0", response.Version)
			tt.validate(t, response, tools)
		})
	}
}

func TestHandleInvalidMethod(t *testing.T) {
	server, _ := setupTestServer(t)

	request := jsonrpc.NewRequest("resources/list", nil, 1)

	response := server.Handle(context.Background(), request)

	assert.Equal(t, "2.0", response.Version)
	assert.Equal(t, 1, response.ID.Value())
	require.NotNil(t, response.Error)
	assert.Equal(t, int(jsonrpc.ErrMethodNotFound), int(response.Error.Code))
	assert.Equal(t, "Method not found", response.Error.Message)
}

func TestHandleInvalidRequest(t *testing.T) {
	server, tools := setupTestServer(t)

	tests := []struct {
		name    string
		request jsonrpc.Request
	}{
		{name: "wrong version", request: jsonrpc.Request{Version: "1.0", Method: "tools/list", Id: 1}},
		{name: "missing version", request: jsonrpc.Request{Method: "tools/call", Params: json.RawMessage(`{"name":"knowledge"}`), Id: 1}},
		{name: "missing method", request: jsonrpc.Request{Version: "2.0", Id: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := server.Handle(context.Background(), tt.request)
			assert.Equal(t, 1, response.ID.Value())
			assert.Nil(t, response.Result)
			require.NotNil(t, response.Error)
			assert.Equal(t, jsonrpc.ErrInvalidRequest, response.Error.Code)
		})
	}
	assert.Empty(t, tools.calls)
}
