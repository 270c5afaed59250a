package session

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// StdioSession reaches a server spawned as a local subprocess and spoken to
// over its stdin/stdout pipes. Opening the session owns the subprocess
// lifecycle: the protocol transport starts it, and Close tears it down.
type StdioSession struct {
	base
}

// StdioOptions configures the subprocess a stdio session spawns.
type StdioOptions struct {
	// Command is the server binary to spawn.
	Command string
	// Args are passed to the command.
	Args []string
	// Env entries are appended to the inherited environment. The inherited
	// environment keeps instrumentation passthrough (GOCOVERDIR and
	// friends) working for subprocess coverage collection.
	Env []string
	// Logger receives session diagnostics. Nil disables them.
	Logger *slog.Logger
}

// OpenStdio spawns the server subprocess and performs the protocol
// handshake over its pipes.
func OpenStdio(ctx context.Context, opts StdioOptions) (*StdioSession, error) {
	cmd := exec.Command(opts.Command, opts.Args...)
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.Stderr = os.Stderr

	client := mcp.NewClient(
		&mcp.Implementation{Name: "scaffold-session", Version: "1.0.0"},
		nil,
	)

	sess, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, &errors.TransportError{Op: "connect_stdio", Err: err}
	}

	s := &StdioSession{
		base: newBase(opts.Logger, "stdio_session", sess),
	}

	s.log.Debug("Stdio session connected", "command", opts.Command)

	return s, nil
}
