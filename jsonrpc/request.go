package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version is the only protocol version accepted in the jsonrpc member
const Version = "2.0"

// Request is a JSON-RPC request, or a notification when Id is absent
type Request struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	Id      any             `json:"id,omitempty"`
}

// NewRequest creates a request expecting a response identified by id
func NewRequest(method string, params json.RawMessage, id any) Request {
	return Request{
		Version: Version,
		Method:  method,
		Params:  params,
		Id:      id,
	}
}

// NewNotification creates a Request without an id
func NewNotification(method string, params json.RawMessage) Request {
	return Request{
		Version: Version,
		Method:  method,
		Params:  params,
	}
}

// IsNotification reports whether the request carries no id and therefore
// expects no response.
func (r Request) IsNotification() bool {
	return r.Id == nil
}

// Validate returns an ErrInvalidRequest error when r is not a JSON-RPC 2.0
// request object.
func (r Request) Validate() *Error {
	if r.Version != Version {
		return NewError(ErrInvalidRequest, fmt.Sprintf("jsonrpc must be %q, got %q", Version, r.Version))
	}
	if r.Method == "" {
		return NewError(ErrInvalidRequest, "method is required")
	}
	return nil
}
