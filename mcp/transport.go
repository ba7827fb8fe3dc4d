package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tiovikram/valyu-mcp/jsonrpc"
)

// maxLineSize bounds a single JSON-RPC message
const maxLineSize = 1024 * 1024

// Transport handles the communication between stdin/stdout and the MCP server
type Transport struct {
	handler jsonrpc.Handler
	scanner *bufio.Scanner
	writer  *json.Encoder
	bufOut  *bufio.Writer
	errOut  io.Writer
}

// NewStdioTransport creates a new stdio transport
func NewStdioTransport(handler jsonrpc.Handler, in io.Reader, out io.Writer, errOut io.Writer) *Transport {
	scanner := bufio.NewScanner(in)
	// Set a reasonable max size for each line
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	bufOut := bufio.NewWriter(out)
	return &Transport{
		handler: handler,
		scanner: scanner,
		writer:  json.NewEncoder(bufOut),
		bufOut:  bufOut,
		errOut:  errOut,
	}
}

// Run reads requests line by line until the input is exhausted or ctx is
// cancelled, writing one response line per request. Requests are handled
// sequentially in arrival order.
func (t *Transport) Run(ctx context.Context) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for t.scanner.Scan() {
			line := append([]byte(nil), t.scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- t.scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("scanner error: %w", err)
					}
				default:
				}
				return nil
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			t.handleLine(ctx, line)
		}
	}
}

func (t *Transport) handleLine(ctx context.Context, line []byte) {
	var request jsonrpc.Request
	if err := json.Unmarshal(line, &request); err != nil {
		t.write(jsonrpc.NewErrorResponse(nil, jsonrpc.ErrParse, err.Error()))
		return
	}

	response := t.handler.Handle(ctx, request)
	if request.IsNotification() {
		return
	}
	t.write(response)
}

func (t *Transport) write(response jsonrpc.Response) {
	if err := t.writer.Encode(response); err != nil {
		fmt.Fprintf(t.errOut, "Error encoding response: %v\n", err)
		// The encoder writes nothing on failure, so the request still gets an answer
		fallback := jsonrpc.NewErrorResponse(response.ID, jsonrpc.ErrInternal, err.Error())
		if err := t.writer.Encode(fallback); err != nil {
			fmt.Fprintf(t.errOut, "Error encoding response: %v\n", err)
		}
	}
	if err := t.bufOut.Flush(); err != nil {
		fmt.Fprintf(t.errOut, "Error writing response: %v\n", err)
	}
}
