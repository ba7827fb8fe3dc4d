package jsonrpc

import "fmt"

// ErrorCode is a JSON-RPC 2.0 error code
type ErrorCode int

// Codes reserved by JSON-RPC 2.0 (https://www.jsonrpc.org/specification#error_object)
const (
	// ErrParse answers a line that is not valid JSON
	ErrParse ErrorCode = -32700
	// ErrInvalidRequest answers JSON that is not a request object
	ErrInvalidRequest ErrorCode = -32600
	ErrMethodNotFound ErrorCode = -32601
	ErrInvalidParams  ErrorCode = -32602
	// ErrInternal answers a request whose response could not be encoded
	ErrInternal ErrorCode = -32603
)

// String returns the standard message for c
func (c ErrorCode) String() string {
	switch c {
	case ErrParse:
		return "Parse error"
	case ErrInvalidRequest:
		return "Invalid Request"
	case ErrMethodNotFound:
		return "Method not found"
	case ErrInvalidParams:
		return "Invalid params"
	case ErrInternal:
		return "Internal error"
	}
	if c >= -32099 && c <= -32000 {
		return "Server error"
	}
	return fmt.Sprintf("Error %d", int(c))
}

// Error is the error member of a response
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.Data == nil {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%d): %v", e.Message, e.Code, e.Data)
}

// NewError creates an error carrying the standard message for code.
// A non-nil data is sent as the error's data member.
func NewError(code ErrorCode, data any) *Error {
	return &Error{
		Code:    code,
		Message: code.String(),
		Data:    data,
	}
}
