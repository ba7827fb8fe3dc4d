package mcp

import "github.com/google/jsonschema-go/jsonschema"

// Version is the latest Model Context Protocol version this server speaks
const Version = "2025-06-18"

// SupportedVersions lists the protocol versions accepted during initialization,
// newest first.
var SupportedVersions = []string{
	Version,
	"2025-03-26",
	"2024-11-05",
}

// Method names handled by Server
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

// Content types
type (
	// Content represents a single item of tool output
	Content struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	}
)

// NewTextContent creates a new text Content
func NewTextContent(text string) Content {
	return Content{
		Type: "text",
		Text: text,
	}
}

// Initialize
type (
	// ServerCapabilities represents the server's supported capabilities
	ServerCapabilities struct {
		Tools *struct {
			ListChanged bool `json:"listChanged"`
		} `json:"tools,omitempty"`
	}

	// Implementation describes the name and version of an MCP client or server
	Implementation struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	// InitializeRequest represents a request to initialize the server
	InitializeRequest struct {
		ProtocolVersion string          `json:"protocolVersion"`
		ClientInfo      *Implementation `json:"clientInfo,omitempty"`
	}

	// InitializeResponse represents the server's response to an initialize request
	InitializeResponse struct {
		ProtocolVersion string             `json:"protocolVersion"`
		Capabilities    ServerCapabilities `json:"capabilities"`
		ServerInfo      Implementation     `json:"serverInfo"`
		Instructions    string             `json:"instructions,omitempty"`
	}
)

// Ping
type (
	// PingResponse represents the response for ping
	PingResponse struct{}
)

// Tools
type (
	// Tool represents a single tool in the tools/list response
	Tool struct {
		Name        string             `json:"name"`
		Description string             `json:"description,omitempty"`
		InputSchema *jsonschema.Schema `json:"inputSchema"`
	}

	// ToolsListRequest represents a request to list available tools
	ToolsListRequest struct {
		Cursor string `json:"cursor,omitempty"`
	}

	// ToolsListResponse represents the response for the tools/list method
	ToolsListResponse struct {
		Tools      []Tool `json:"tools"`
		NextCursor string `json:"nextCursor,omitempty"`
	}

	// ToolCallRequest represents a request to call a specific tool
	ToolCallRequest struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments,omitempty"`
	}

	// ToolCallResponse represents the response from a tool call
	ToolCallResponse struct {
		Content []Content `json:"content"`
		IsError bool      `json:"isError,omitempty"`
	}
)

// NewToolResult wraps text into a successful ToolCallResponse
func NewToolResult(text string) ToolCallResponse {
	return ToolCallResponse{Content: []Content{NewTextContent(text)}}
}

// NewToolError wraps text into a ToolCallResponse flagged as an error
func NewToolError(text string) ToolCallResponse {
	return ToolCallResponse{
		Content: []Content{NewTextContent(text)},
		IsError: true,
	}
}
