// Package session presents one uniform call interface over a running tool
// server, whether it is reached through a local subprocess pipe or an HTTP
// endpoint.
//
// Each transport kind has its own concrete implementation; both normalize
// the protocol library's native result shapes into ToolInfo and CallResult
// at the boundary, so callers and tests are written once and run against
// either transport.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// ToolInfo is the uniform tool listing shape.
type ToolInfo struct {
	Name        string
	Description string
}

// CallResult is the uniform tool call outcome. IsError is the single error
// flag regardless of how the native client spells it; Text carries the
// first text payload of the result.
type CallResult struct {
	IsError bool
	Text    string
}

// Session is an open, transport-bound channel to a running server.
// Implementations are safe for concurrent calls, and Close is idempotent.
type Session interface {
	// ListTools returns the server's registered tools in the uniform shape.
	ListTools(ctx context.Context) ([]ToolInfo, error)

	// CallTool invokes a tool. Transport failures during the call are
	// converted into an error-shaped CallResult, never returned as raw
	// errors.
	CallTool(ctx context.Context, name string, args map[string]any) (*CallResult, error)

	// Close releases the underlying transport connection.
	Close() error
}

// Compile-time verification that both transports implement Session.
var (
	_ Session = (*StdioSession)(nil)
	_ Session = (*HTTPSession)(nil)
)

// base implements the shared normalization over a connected protocol
// session.
type base struct {
	log *slog.Logger

	mu     sync.Mutex
	sess   *mcp.ClientSession
	closed bool
}

func newBase(log *slog.Logger, component string, sess *mcp.ClientSession) base {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return base{
		log:  log.With("component", component),
		sess: sess,
	}
}

func (b *base) session() (*mcp.ClientSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.sess == nil {
		return nil, errors.ErrSessionClosed
	}

	return b.sess, nil
}

// ListTools normalizes the native tool list into the uniform shape.
func (b *base) ListTools(ctx context.Context) ([]ToolInfo, error) {
	sess, err := b.session()
	if err != nil {
		return nil, err
	}

	res, err := sess.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, &errors.TransportError{Op: "list_tools", Err: err}
	}

	tools := make([]ToolInfo, 0, len(res.Tools))
	for _, t := range res.Tools {
		tools = append(tools, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
		})
	}

	return tools, nil
}

// CallTool invokes a tool and normalizes the outcome. A transport failure
// is caught here and shaped like a tool-level error so callers see one
// result shape on every path.
func (b *base) CallTool(ctx context.Context, name string, args map[string]any) (*CallResult, error) {
	sess, err := b.session()
	if err != nil {
		return nil, err
	}

	if args == nil {
		args = map[string]any{}
	}

	b.log.Debug("Calling tool", "tool", name)

	res, err := sess.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		b.log.Debug("Tool call failed at transport level", "tool", name, "error", err)

		transportErr := &errors.TransportError{Op: "call_tool", Err: err}

		return &CallResult{IsError: true, Text: transportErr.Error()}, nil
	}

	return &CallResult{
		IsError: res.IsError,
		Text:    firstText(res),
	}, nil
}

// Close releases the transport connection. Safe to call multiple times and
// on sessions that never finished connecting.
func (b *base) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true

	if b.sess == nil {
		return nil
	}

	err := b.sess.Close()
	b.sess = nil

	return err
}

// firstText extracts the first text payload from a native result.
func firstText(res *mcp.CallToolResult) string {
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			return text.Text
		}
	}

	return ""
}
