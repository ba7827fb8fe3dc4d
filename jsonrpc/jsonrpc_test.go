package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
	}{
		{name: "string", input: "abc"},
		{name: "int", input: 1},
		{name: "float", input: float64(2)},
		{name: "nil", input: nil, wantErr: true},
		{name: "bool", input: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, id.IsNil())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.Value())
		})
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		response Response
		want     string
	}{
		{
			name:     "result with numeric id",
			response: NewResponse(1, map[string]string{"ok": "yes"}, nil),
			want:     `{"jsonrpc":"2.0","result":{"ok":"yes"},"id":1}`,
		},
		{
			name:     "float id from decoded request",
			response: NewResponse(float64(3), "x", nil),
			want:     `{"jsonrpc":"2.0","result":"x","id":3}`,
		},
		{
			name:     "parse error has null id",
			response: NewErrorResponse(nil, ErrParse, nil),
			want:     `{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"},"id":null}`,
		},
		{
			name:     "server error range",
			response: NewResponse("a", nil, NewError(-32050, "detail")),
			want:     `{"jsonrpc":"2.0","error":{"code":-32050,"message":"Server error","data":"detail"},"id":"a"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.response)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestRequest_IsNotification(t *testing.T) {
	var request Request
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`), &request))
	assert.True(t, request.IsNotification())

	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"ping","id":0}`), &request))
	assert.False(t, request.IsNotification())

	assert.True(t, NewNotification("notifications/initialized", nil).IsNotification())
	assert.False(t, NewRequest("ping", nil, "1").IsNotification())
}

func TestID_UnmarshalJSON(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte(`7`), &id))
	assert.Equal(t, 7, id.Value())

	require.NoError(t, json.Unmarshal([]byte(`"req-1"`), &id))
	assert.Equal(t, "req-1", id.Value())

	require.NoError(t, json.Unmarshal([]byte(`1.5`), &id))
	assert.Equal(t, 1.5, id.Value())

	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.True(t, id.IsNil())

	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
	}{
		{name: "request", line: `{"jsonrpc":"2.0","method":"ping","id":1}`},
		{name: "notification", line: `{"jsonrpc":"2.0","method":"notifications/initialized"}`},
		{name: "missing version", line: `{"method":"ping","id":1}`, wantErr: true},
		{name: "old version", line: `{"jsonrpc":"1.0","method":"ping","id":1}`, wantErr: true},
		{name: "missing method", line: `{"jsonrpc":"2.0","id":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var request Request
			require.NoError(t, json.Unmarshal([]byte(tt.line), &request))

			err := request.Validate()
			if !tt.wantErr {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, ErrInvalidRequest, err.Code)
			assert.Equal(t, "Invalid Request", err.Message)
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "Internal error", ErrInternal.String())
	assert.Equal(t, "Server error", ErrorCode(-32001).String())
	assert.Equal(t, "Error 42", ErrorCode(42).String())

	err := NewError(ErrInvalidParams, "bad arguments")
	assert.Equal(t, "Invalid params (-32602): bad arguments", err.Error())
	assert.Equal(t, "Method not found (-32601)", NewError(ErrMethodNotFound, nil).Error())
}
