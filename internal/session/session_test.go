package session

import (
	"context"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// newTestServer builds a protocol server with an echo tool and a tool that
// reports a native error result.
func newTestServer() *mcp.Server {
	srv := mcp.NewServer(
		&mcp.Implementation{Name: "session-test", Version: "0.0.1"},
		&mcp.ServerOptions{HasTools: true},
	)

	srv.AddTool(
		&mcp.Tool{Name: "echo", Description: "Echo the message back", InputSchema: &jsonschema.Schema{Type: "object"}},
		func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "hello"}},
			}, nil
		},
	)

	srv.AddTool(
		&mcp.Tool{Name: "fail", Description: "Always fails", InputSchema: &jsonschema.Schema{Type: "object"}},
		func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "tool_execution: boom"}},
				IsError: true,
			}, nil
		},
	)

	return srv
}

// connectBase wires a base session to an in-process server. The returned
// server session lets tests simulate transport failure by closing it.
func connectBase(t *testing.T) (*base, *mcp.ServerSession) {
	t.Helper()

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := newTestServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)

	sess, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	b := newBase(nil, "test_session", sess)

	t.Cleanup(func() { _ = b.Close() })

	return &b, serverSession
}

func TestListToolsUniformShape(t *testing.T) {
	b, _ := connectBase(t)

	tools, err := b.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 2)

	byName := make(map[string]ToolInfo, len(tools))
	for _, ti := range tools {
		byName[ti.Name] = ti
	}

	require.Equal(t, "Echo the message back", byName["echo"].Description)
	require.Equal(t, "Always fails", byName["fail"].Description)
}

func TestCallToolSuccess(t *testing.T) {
	b, _ := connectBase(t)

	res, err := b.CallTool(context.Background(), "echo", map[string]any{"message": "hello"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "hello", res.Text)
}

func TestCallToolNilArguments(t *testing.T) {
	b, _ := connectBase(t)

	res, err := b.CallTool(context.Background(), "echo", nil)
	require.NoError(t, err)
	require.False(t, res.IsError)
}

func TestCallToolNativeErrorFlag(t *testing.T) {
	b, _ := connectBase(t)

	res, err := b.CallTool(context.Background(), "fail", nil)
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, res.Text, "boom")
}

func TestCallToolTransportFailureBecomesErrorResult(t *testing.T) {
	b, serverSession := connectBase(t)

	// Drop the server side so the next call fails at the transport level.
	require.NoError(t, serverSession.Close())

	res, err := b.CallTool(context.Background(), "echo", nil)
	require.NoError(t, err, "transport failures must not surface as raw errors")
	require.True(t, res.IsError)
	require.Contains(t, res.Text, "transport failure during call_tool")
}

func TestCloseIsIdempotent(t *testing.T) {
	b, _ := connectBase(t)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err := b.ListTools(context.Background())
	require.ErrorIs(t, err, errors.ErrSessionClosed)

	_, err = b.CallTool(context.Background(), "echo", nil)
	require.ErrorIs(t, err, errors.ErrSessionClosed)
}

func TestCloseOnNeverEstablishedSession(t *testing.T) {
	b := newBase(nil, "test_session", nil)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}
