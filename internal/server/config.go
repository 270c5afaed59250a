package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/logging"
)

// Transport names accepted by the server.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportSSE   = "sse"
)

// Config holds the server configuration. Values come from defaults, an
// optional config file, and MCP_* environment variables, in ascending
// precedence; the CLI flags override Host, Port, and Transport on top.
type Config struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	LogLevel  string `mapstructure:"log_level"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Transport string `mapstructure:"transport"`
	HTTPPath  string `mapstructure:"http_path"`

	// DNSRebindingProtection enables Host-header validation for HTTP
	// transports. Disabled by default for development.
	DNSRebindingProtection bool     `mapstructure:"dns_rebinding_protection"`
	AllowedHosts           []string `mapstructure:"allowed_hosts"`

	// ParallelWorkers caps concurrent sub-tasks per parallel invocation.
	ParallelWorkers int `mapstructure:"parallel_workers"`

	// Destinations configures the unified logger sinks.
	Destinations []logging.DestinationConfig `mapstructure:"logging_destinations"`
}

// LoadConfig reads configuration from an optional YAML file (scaffold.yaml
// in the working directory unless an explicit path is given) and MCP_*
// environment variables layered over defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("name", "mcp-scaffold")
	v.SetDefault("version", "0.1.0")
	v.SetDefault("log_level", "info")
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 3001)
	v.SetDefault("transport", TransportStdio)
	v.SetDefault("http_path", "/mcp")
	v.SetDefault("dns_rebinding_protection", false)
	v.SetDefault("parallel_workers", 8)

	v.SetEnvPrefix("MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("scaffold")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		// A missing default config file is fine; defaults and env apply.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// MCP_ALLOWED_HOSTS arrives as a comma-separated string from the
	// environment; the config file may supply a proper list.
	if hosts := v.GetString("allowed_hosts"); hosts != "" && len(cfg.AllowedHosts) == 0 {
		cfg.AllowedHosts = splitHosts(hosts)
	}

	for _, dest := range cfg.Destinations {
		if err := dest.Validate(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func splitHosts(s string) []string {
	parts := strings.Split(s, ",")
	hosts := make([]string, 0, len(parts))

	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			hosts = append(hosts, h)
		}
	}

	return hosts
}

// SlogLevel maps the configured log level onto slog's scale.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr returns the host:port the HTTP transports bind to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
