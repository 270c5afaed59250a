package scaffold

import (
	"context"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/session"
)

// Session is a transport-bound handle for issuing tool calls. Both
// transports present the same interface, so callers never branch on how the
// server is reached.
type Session = session.Session

// ToolInfo describes one tool advertised by a server.
type ToolInfo = session.ToolInfo

// CallResult is the uniform outcome of one tool call over a session.
type CallResult = session.CallResult

// StdioSession talks to a server subprocess over its standard streams.
type StdioSession = session.StdioSession

// HTTPSession talks to an already-running server over streamable HTTP.
type HTTPSession = session.HTTPSession

// StdioOptions configures OpenStdio.
type StdioOptions = session.StdioOptions

// HTTPOptions configures OpenHTTP.
type HTTPOptions = session.HTTPOptions

// OpenStdio spawns the server command and performs the protocol handshake
// over its standard streams.
func OpenStdio(ctx context.Context, opts StdioOptions) (*StdioSession, error) {
	return session.OpenStdio(ctx, opts)
}

// OpenHTTP connects to a running server at the given endpoint.
func OpenHTTP(ctx context.Context, opts HTTPOptions) (*HTTPSession, error) {
	return session.OpenHTTP(ctx, opts)
}
