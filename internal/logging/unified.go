// Package logging implements the unified tool-invocation logger: a set of
// pluggable destination sinks fed by a single Emit call.
//
// The unified logger is distinct from the application's diagnostic
// *slog.Logger. Diagnostics describe what the scaffold itself is doing;
// unified records describe what tools did, and are what operators query
// after the fact (which call ran, with which arguments, how long, with
// which correlation id).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/correlation"
)

// Record is one unified log entry.
type Record struct {
	Time          time.Time
	Level         slog.Level
	Message       string
	Tool          string
	CorrelationID string
	Status        string
	DurationMs    int64
	Fields        map[string]any
}

// namedSink pairs a sink with its destination type for fallback reporting.
type namedSink struct {
	kind DestinationType
	sink Sink
}

// UnifiedLogger fans records out to every active destination sink.
// Emission is best-effort: a failing sink is reported to the fallback
// writer and never prevents the other sinks from receiving the record.
type UnifiedLogger struct {
	log      *slog.Logger
	sinks    []namedSink
	fallback io.Writer
}

// Options configures unified logger initialization.
type Options struct {
	// Logger receives diagnostics about sink construction. Nil disables them.
	Logger *slog.Logger
	// Fallback receives reports about failing sinks. Defaults to stderr.
	Fallback io.Writer
}

// Init builds one sink per enabled destination. Called once at process
// startup.
//
// Unknown destination types are a hard configuration error. A known
// destination whose backing resource is unavailable is skipped and
// reported, not fatal: the server must still come up when, say, the log
// database directory is read-only. An empty destination list defaults to a
// single sqlite destination.
func Init(destinations []DestinationConfig, opts Options) (*UnifiedLogger, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "unified_logger")

	fallback := opts.Fallback
	if fallback == nil {
		fallback = os.Stderr
	}

	if len(destinations) == 0 {
		destinations = []DestinationConfig{{Type: DestinationSQLite, Enabled: true}}
	}

	for _, cfg := range destinations {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	u := &UnifiedLogger{
		log:      log,
		fallback: fallback,
	}

	for _, cfg := range destinations {
		if !cfg.Enabled {
			log.Debug("Skipping disabled destination", "type", cfg.Type)

			continue
		}

		sink, err := newSink(cfg)
		if err != nil {
			log.Warn("Logging destination unavailable, skipping", "type", cfg.Type, "error", err)
			fmt.Fprintf(fallback, "unified logger: destination %s unavailable: %v\n", cfg.Type, err)

			continue
		}

		u.sinks = append(u.sinks, namedSink{kind: cfg.Type, sink: sink})
		log.Info("Logging destination active", "type", cfg.Type)
	}

	return u, nil
}

// New builds a unified logger around already-constructed sinks. Init is the
// config-driven path; New serves callers embedding their own Sink
// implementations.
func New(opts Options, sinks ...Sink) *UnifiedLogger {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fallback := opts.Fallback
	if fallback == nil {
		fallback = os.Stderr
	}

	u := &UnifiedLogger{
		log:      log.With("component", "unified_logger"),
		fallback: fallback,
	}

	for _, s := range sinks {
		u.sinks = append(u.sinks, namedSink{kind: "custom", sink: s})
	}

	return u
}

// Emit fans the record out to every active sink.
//
// The record's correlation id defaults to the id active in ctx (the
// invocation-scoped id, then the process startup id). Sink failures are
// isolated: they are reported to the fallback writer and the remaining
// sinks still receive the record.
func (u *UnifiedLogger) Emit(ctx context.Context, rec Record) {
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	if rec.CorrelationID == "" {
		rec.CorrelationID = correlation.Active(ctx)
	}

	for _, ns := range u.sinks {
		if err := ns.sink.Write(ctx, rec); err != nil {
			fmt.Fprintf(u.fallback, "unified logger: sink %s failed: %v\n", ns.kind, err)
		}
	}
}

// ActiveSinks returns the destination types that were successfully built.
func (u *UnifiedLogger) ActiveSinks() []DestinationType {
	kinds := make([]DestinationType, 0, len(u.sinks))
	for _, ns := range u.sinks {
		kinds = append(kinds, ns.kind)
	}

	return kinds
}

// Close releases all sink resources. Close failures are reported to the
// fallback writer, never returned: cleanup paths must always complete.
func (u *UnifiedLogger) Close() {
	for _, ns := range u.sinks {
		if err := ns.sink.Close(); err != nil {
			fmt.Fprintf(u.fallback, "unified logger: closing sink %s: %v\n", ns.kind, err)
		}
	}

	u.sinks = nil
}
