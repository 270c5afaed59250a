//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	scaffold "github.com/abnerjacobsen/mcp-cookie-cutter"
)

func openStdio(t *testing.T, ctx context.Context) *scaffold.StdioSession {
	t.Helper()

	sess, err := scaffold.OpenStdio(ctx, scaffold.StdioOptions{
		Command: serverBin,
		Args:    []string{"--transport", "stdio"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestStdio_ListTools(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess := openStdio(t, ctx)

	infos, err := sess.ListTools(ctx)
	require.NoError(t, err)

	names := make(map[string]bool, len(infos))
	for _, info := range infos {
		names[info.Name] = true
	}
	for _, want := range []string{"echo", "fail", "wait", "process_batch"} {
		require.True(t, names[want], "missing tool %q", want)
	}
}

func TestStdio_EchoRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess := openStdio(t, ctx)

	res, err := sess.CallTool(ctx, "echo", map[string]any{"message": "hello"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "hello", res.Text)
}

func TestStdio_CoercionFailureShape(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess := openStdio(t, ctx)

	res, err := sess.CallTool(ctx, "wait", map[string]any{"seconds": "soon"})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, res.Text, `parameter "seconds"`)
	require.Contains(t, res.Text, "correlation_id=")
}

func TestStdio_PartialBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess := openStdio(t, ctx)

	res, err := sess.CallTool(ctx, "process_batch", map[string]any{
		"items": []string{"alpha", "fail", "gamma"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, "partial failure must not fail the call")
	require.Contains(t, res.Text, "ALPHA")
	require.Contains(t, res.Text, "GAMMA")
	require.Contains(t, res.Text, "item rejected")
}
