package jsonrpc

// Response answers a single Request. Exactly one of Result and Error is set.
type Response struct {
	Version string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      ID     `json:"id"`
}

// NewResponse creates a response to the request identified by id.
// An id that is neither a string nor a number is answered with null.
func NewResponse(id any, result any, err *Error) Response {
	respID, _ := NewID(id)
	return Response{
		Version: Version,
		Result:  result,
		Error:   err,
		ID:      respID,
	}
}

// NewErrorResponse creates a response carrying the standard error for code
func NewErrorResponse(id any, code ErrorCode, data any) Response {
	return NewResponse(id, nil, NewError(code, data))
}
