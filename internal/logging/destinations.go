package logging

import (
	"context"
	"fmt"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// DestinationType identifies a logging sink backend.
type DestinationType string

const (
	// DestinationSQLite persists records to a sqlite database.
	DestinationSQLite DestinationType = "sqlite"
	// DestinationFile appends records to a JSON-lines file.
	DestinationFile DestinationType = "file"
	// DestinationConsole writes records to standard error.
	DestinationConsole DestinationType = "console"
)

// DestinationConfig describes one logging destination. It is immutable once
// constructed and consumed only at initialization.
type DestinationConfig struct {
	Type     DestinationType `mapstructure:"type"`
	Enabled  bool            `mapstructure:"enabled"`
	Settings map[string]any  `mapstructure:"settings"`
}

// Validate rejects destination configurations with unknown types. Unknown
// types are a configuration error, not something to pass through silently.
func (c DestinationConfig) Validate() error {
	switch c.Type {
	case DestinationSQLite, DestinationFile, DestinationConsole:
		return nil
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownDestination, c.Type)
	}
}

// stringSetting reads a string value from the destination settings map,
// falling back to def when absent or not a string.
func (c DestinationConfig) stringSetting(key, def string) string {
	if v, ok := c.Settings[key].(string); ok && v != "" {
		return v
	}

	return def
}

// AvailableDestinations reports which destination types this build can
// construct. Used for startup diagnostics.
func AvailableDestinations() []DestinationType {
	return []DestinationType{DestinationSQLite, DestinationFile, DestinationConsole}
}

// Sink receives emitted records. Implementations must be safe for
// concurrent Write calls.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// newSink constructs the sink for a validated destination config. An error
// here means the backing resource is unavailable (e.g. the database file
// cannot be opened); the unified logger skips such destinations.
func newSink(cfg DestinationConfig) (Sink, error) {
	switch cfg.Type {
	case DestinationSQLite:
		return newSQLiteSink(cfg.stringSetting("path", defaultSQLitePath))
	case DestinationFile:
		return newFileSink(cfg.stringSetting("path", defaultFilePath))
	case DestinationConsole:
		return newConsoleSink(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownDestination, cfg.Type)
	}
}
