package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	scafferrors "github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

const (
	// ssePath is where the SSE transport mounts its event stream.
	ssePath = "/sse"

	shutdownGrace     = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Run serves the assembled server over the configured transport. It blocks
// until the context is cancelled (HTTP transports shut down gracefully) or
// the transport fails.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case TransportStdio:
		s.log.Info("Starting server with STDIO transport")

		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		s.log.Info("Starting server with Streamable HTTP transport", "addr", s.cfg.Addr(), "path", s.cfg.HTTPPath)

		handler := mcp.NewStreamableHTTPHandler(
			func(*http.Request) *mcp.Server { return s.mcp },
			&mcp.StreamableHTTPOptions{},
		)

		mux := http.NewServeMux()
		mux.Handle(s.cfg.HTTPPath, handler)

		return s.serveHTTP(ctx, mux)
	case TransportSSE:
		s.log.Info("Starting server with SSE transport", "addr", s.cfg.Addr(), "path", ssePath)

		handler := mcp.NewSSEHandler(
			func(*http.Request) *mcp.Server { return s.mcp },
			&mcp.SSEOptions{},
		)

		mux := http.NewServeMux()
		mux.Handle(ssePath, handler)

		return s.serveHTTP(ctx, mux)
	default:
		return fmt.Errorf("%w: %q", scafferrors.ErrUnknownTransport, s.cfg.Transport)
	}
}

// serveHTTP runs an HTTP server until ctx is cancelled. Binding the
// listener before returning control means a startup failure (port in use)
// surfaces immediately rather than from the serve goroutine.
func (s *Server) serveHTTP(ctx context.Context, handler http.Handler) error {
	if s.cfg.DNSRebindingProtection {
		handler = s.hostCheck(handler)
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("Graceful shutdown failed, closing", "error", err)

			_ = srv.Close()
		}

		<-serveErr

		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}

// hostCheck rejects requests whose Host header is not in the allowed set,
// the DNS rebinding protection contract for HTTP transports.
func (s *Server) hostCheck(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.cfg.AllowedHosts)+2)
	allowed["127.0.0.1"] = true
	allowed["localhost"] = true

	for _, h := range s.cfg.AllowedHosts {
		allowed[strings.ToLower(h)] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		if !allowed[strings.ToLower(host)] {
			s.log.Warn("Rejected request with disallowed host", "host", r.Host)
			http.Error(w, "invalid host", http.StatusForbidden)

			return
		}

		next.ServeHTTP(w, r)
	})
}
