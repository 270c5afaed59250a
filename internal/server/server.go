// Package server assembles the tool registry into a runnable MCP server.
//
// Assembly wraps every tool in the fixed pipeline stage order, registers it
// with the protocol library under its declared name and schema, and serves
// the result over the configured transport (stdio, streamable HTTP, or SSE).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/correlation"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/logging"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/pipeline"
)

// Server is an assembled tool server.
type Server struct {
	cfg     *Config
	log     *slog.Logger
	unified *logging.UnifiedLogger
	mcp     *mcp.Server
}

// New assembles a server: it sets the startup correlation id, initializes
// the unified logger from the configured destinations, and registers every
// tool wrapped in its stage chain. The startup id is cleared once
// initialization completes.
func New(cfg *Config, tools []pipeline.Tool, log *slog.Logger) (*Server, error) {
	startupID := correlation.NewStartupID()
	correlation.SetProcessID(startupID)

	unified, err := logging.Init(cfg.Destinations, logging.Options{Logger: log})
	if err != nil {
		correlation.ClearProcessID()

		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		log:     log.With("component", "server"),
		unified: unified,
	}

	ctx := correlation.WithID(context.Background(), startupID)

	s.emitStartup(ctx, fmt.Sprintf("Unified logging initialized with %d available destination types",
		len(logging.AvailableDestinations())))
	s.emitStartup(ctx, fmt.Sprintf("Server config: %s at log level %s", cfg.Name, cfg.LogLevel))

	if cfg.DNSRebindingProtection {
		s.emitStartup(ctx, fmt.Sprintf("DNS rebinding protection enabled with allowed hosts: %v", cfg.AllowedHosts))
	} else {
		s.emitStartup(ctx, "DNS rebinding protection disabled (development mode)")
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		&mcp.ServerOptions{
			HasTools: true,
		},
	)

	if err := s.registerTools(ctx, tools); err != nil {
		unified.Close()
		correlation.ClearProcessID()

		return nil, err
	}

	s.emitStartup(ctx, "Server initialization complete")
	correlation.ClearProcessID()

	return s, nil
}

// registerTools wraps each tool in its stage chain and registers it under
// its declared name. Names must be unique across the registry.
func (s *Server) registerTools(ctx context.Context, tools []pipeline.Tool) error {
	deps := pipeline.Deps{
		Unified:    s.unified,
		Log:        s.log,
		MaxWorkers: s.cfg.ParallelWorkers,
	}

	seen := make(map[string]bool, len(tools))

	for _, t := range tools {
		if seen[t.Name] {
			return fmt.Errorf("%w: %q", errors.ErrDuplicateTool, t.Name)
		}

		seen[t.Name] = true

		inv, err := pipeline.Chain(t, deps)
		if err != nil {
			return err
		}

		s.mcp.AddTool(
			&mcp.Tool{
				Name:        inv.Name(),
				Description: inv.Description(),
				InputSchema: t.Schema(),
			},
			toolHandler(inv),
		)

		if t.Parallel {
			s.emitStartup(ctx, fmt.Sprintf("Registered parallel tool: %s", t.Name))
		} else {
			s.emitStartup(ctx, fmt.Sprintf("Registered tool: %s", t.Name))
		}
	}

	return nil
}

// toolHandler adapts a chained invocation to the protocol library's handler
// signature, translating the pipeline Result into the wire result shape.
func toolHandler(inv *pipeline.Invocation) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArguments(req)
		if err != nil {
			return errorContent(fmt.Sprintf("%s: %v", errors.KindToolExecution, err), ""), nil
		}

		res := inv.Invoke(ctx, args)
		if res.IsError {
			return errorContent(fmt.Sprintf("%s: %s", res.ErrorKind, res.ErrorMessage), res.CorrelationID), nil
		}

		return successContent(res.Value)
	}
}

// parseArguments unmarshals the raw call arguments into a map.
func parseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("unmarshal arguments: %w", err)
	}

	return args, nil
}

// successContent renders a success value: strings pass through verbatim,
// anything else is serialized as JSON text.
func successContent(value any) (*mcp.CallToolResult, error) {
	text, ok := value.(string)
	if !ok {
		data, err := json.Marshal(value)
		if err != nil {
			return errorContent(fmt.Sprintf("%s: marshal result: %v", errors.KindToolExecution, err), ""), nil
		}

		text = string(data)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil
}

// errorContent renders the uniform error payload. The correlation id rides
// in the text so it survives any transport untouched.
func errorContent(message, correlationID string) *mcp.CallToolResult {
	if correlationID != "" {
		message = fmt.Sprintf("%s (correlation_id=%s)", message, correlationID)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// emitStartup sends a startup-phase record to the unified logger and the
// diagnostic logger.
func (s *Server) emitStartup(ctx context.Context, msg string) {
	s.log.Info(msg)
	s.unified.Emit(ctx, logging.Record{
		Level:   slog.LevelInfo,
		Message: msg,
	})
}

// MCP exposes the underlying protocol server, used by the transport layer
// and by in-process test connections.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Close releases the unified logger's sinks.
func (s *Server) Close() {
	s.unified.Close()
}
