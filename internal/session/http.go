package session

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// HTTPSession reaches an already-running server over streamable HTTP. The
// server process itself is owned elsewhere, normally by the process
// supervisor; this session owns only the client connection.
type HTTPSession struct {
	base

	endpoint string
}

// HTTPOptions configures an HTTP session.
type HTTPOptions struct {
	// Endpoint is the full tool RPC URL, e.g. http://127.0.0.1:3001/mcp.
	Endpoint string
	// Logger receives session diagnostics. Nil disables them.
	Logger *slog.Logger
}

// OpenHTTP connects to a running server's streamable HTTP endpoint.
func OpenHTTP(ctx context.Context, opts HTTPOptions) (*HTTPSession, error) {
	client := mcp.NewClient(
		&mcp.Implementation{Name: "scaffold-session", Version: "1.0.0"},
		nil,
	)

	transport := &mcp.StreamableClientTransport{
		Endpoint:   opts.Endpoint,
		MaxRetries: 5,
	}

	sess, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, &errors.TransportError{Op: "connect_http", Err: err}
	}

	s := &HTTPSession{
		base:     newBase(opts.Logger, "http_session", sess),
		endpoint: opts.Endpoint,
	}

	s.log.Debug("HTTP session connected", "endpoint", opts.Endpoint)

	return s, nil
}

// Endpoint returns the URL this session is bound to.
func (s *HTTPSession) Endpoint() string {
	return s.endpoint
}
