package scaffold

import (
	"log/slog"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/logging"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/server"
)

// Config holds server configuration loaded from file, environment, or both.
type Config = server.Config

// Server hosts registered tools over the configured transport.
type Server = server.Server

// Supported transports.
const (
	TransportStdio = server.TransportStdio
	TransportHTTP  = server.TransportHTTP
	TransportSSE   = server.TransportSSE
)

// DestinationType identifies a logging destination backend.
type DestinationType = logging.DestinationType

// DestinationConfig declares one logging destination.
type DestinationConfig = logging.DestinationConfig

// Logging destination backends.
const (
	DestinationSQLite  = logging.DestinationSQLite
	DestinationFile    = logging.DestinationFile
	DestinationConsole = logging.DestinationConsole
)

// LoadConfig loads configuration from the given file path. An empty path
// falls back to ./scaffold.yaml when present, then to defaults. Environment
// variables prefixed MCP_ override both.
func LoadConfig(path string) (*Config, error) {
	return server.LoadConfig(path)
}

// NewServer assembles a server: it initializes unified logging, wraps every
// tool in the decorator pipeline, and registers the results. A nil logger
// discards diagnostic output.
func NewServer(cfg *Config, tools []Tool, log *slog.Logger) (*Server, error) {
	return server.New(cfg, tools, log)
}

// AvailableDestinations reports the destination types this build supports.
func AvailableDestinations() []DestinationType {
	return logging.AvailableDestinations()
}
