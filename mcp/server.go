package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/tiovikram/valyu-mcp/jsonrpc"
)

// ToolProvider lists the tools a Server exposes and executes calls to them.
// CallTool reports failures inside the returned ToolCallResponse.
type ToolProvider interface {
	ListTools() []Tool
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) ToolCallResponse
}

// Server represents an MCP server that processes JSON-RPC requests
type Server struct {
	tools        ToolProvider
	info         Implementation
	instructions string
	logger       *slog.Logger
}

var _ jsonrpc.Handler = (*Server)(nil)

// ServerOption configures a Server
type ServerOption func(*Server) error

// WithServerInfo sets the name and version reported by initialize
func WithServerInfo(name, version string) ServerOption {
	return func(s *Server) error {
		s.info = Implementation{Name: name, Version: version}
		return nil
	}
}

// WithInstructions sets the instructions returned by initialize
func WithInstructions(instructions string) ServerOption {
	return func(s *Server) error {
		s.instructions = instructions
		return nil
	}
}

// WithLogger sets the logger for the server
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates a new MCP server instance serving the given tools
func NewServer(tools ToolProvider, opts ...ServerOption) (*Server, error) {
	if tools == nil {
		return nil, fmt.Errorf("tool provider is required")
	}

	s := &Server{
		tools:  tools,
		info:   Implementation{Name: "mcp-server", Version: "0.0.0"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handle processes a single JSON-RPC request and returns a response.
// Responses to notifications are discarded by the transport.
func (s *Server) Handle(ctx context.Context, request jsonrpc.Request) jsonrpc.Response {
	s.logger.Debug("handling request", "method", request.Method)

	if err := request.Validate(); err != nil {
		return jsonrpc.NewResponse(request.Id, nil, err)
	}

	switch request.Method {
	case MethodInitialize:
		return s.handleInitialize(request)
	case MethodInitialized:
		return jsonrpc.NewResponse(request.Id, struct{}{}, nil)
	case MethodPing:
		return jsonrpc.NewResponse(request.Id, PingResponse{}, nil)
	case MethodToolsList:
		return s.handleToolsList(request)
	case MethodToolsCall:
		return s.handleToolsCall(ctx, request)
	default:
		return jsonrpc.NewErrorResponse(request.Id, jsonrpc.ErrMethodNotFound, request.Method)
	}
}

func (s *Server) handleInitialize(request jsonrpc.Request) jsonrpc.Response {
	var params InitializeRequest
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &params); err != nil {
			return jsonrpc.NewErrorResponse(request.Id, jsonrpc.ErrInvalidParams, err.Error())
		}
	}

	version := Version
	if slices.Contains(SupportedVersions, params.ProtocolVersion) {
		version = params.ProtocolVersion
	}
	if params.ClientInfo != nil {
		s.logger.Info("client connected",
			"client", params.ClientInfo.Name,
			"client_version", params.ClientInfo.Version,
			"protocol_version", version)
	}

	response := InitializeResponse{
		ProtocolVersion: version,
		Capabilities: ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged"`
			}{
				ListChanged: false,
			},
		},
		ServerInfo:   s.info,
		Instructions: s.instructions,
	}
	return jsonrpc.NewResponse(request.Id, response, nil)
}

func (s *Server) handleToolsList(request jsonrpc.Request) jsonrpc.Response {
	return jsonrpc.NewResponse(request.Id, ToolsListResponse{Tools: s.tools.ListTools()}, nil)
}

func (s *Server) handleToolsCall(ctx context.Context, request jsonrpc.Request) jsonrpc.Response {
	var params ToolCallRequest
	if err := json.Unmarshal(request.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(request.Id, jsonrpc.ErrInvalidParams, err.Error())
	}

	result := s.tools.CallTool(ctx, params.Name, params.Arguments)
	return jsonrpc.NewResponse(request.Id, result, nil)
}
