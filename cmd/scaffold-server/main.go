// Package main is the entry point for the scaffold tool server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	scaffold "github.com/abnerjacobsen/mcp-cookie-cutter"
	"github.com/abnerjacobsen/mcp-cookie-cutter/tools"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		transport  string
		host       string
		port       int
	)

	cmd := &cobra.Command{
		Use:          "scaffold-server",
		Short:        "Run the scaffold MCP tool server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := scaffold.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Transport = transport
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a config file")
	cmd.Flags().StringVar(&transport, "transport", scaffold.TransportStdio,
		"Transport type (stdio, sse, or http)")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1",
		"Host to bind to (use 0.0.0.0 for Docker)")
	cmd.Flags().IntVar(&port, "port", 3001,
		"Port to listen on for SSE or HTTP transport")

	return cmd
}

func serve(parent context.Context, cfg *scaffold.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	srv, err := scaffold.NewServer(cfg, tools.All(), log)
	if err != nil {
		return err
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
