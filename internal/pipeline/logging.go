package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/correlation"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/logging"
)

// ToolLog returns a stage that brackets every invocation with start and end
// records tagged with a fresh correlation id.
//
// The id is generated per call, scoped to the call's context for the inner
// stages, and attached to any error flowing back out so the outermost stage
// can still report it after this scope has ended. A panic in the inner
// stages is converted to an error here so the end record is emitted for
// every outcome.
func ToolLog(name string, inner ToolFunc, unified *logging.UnifiedLogger, log *slog.Logger) ToolFunc {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "tool_logger", "tool", name)

	return func(ctx context.Context, args map[string]any) (value any, err error) {
		id := correlation.NewCallID()
		ctx = correlation.WithID(ctx, id)
		start := time.Now()

		log.Debug("Tool invocation started", "correlation_id", id)
		safeEmit(ctx, unified, logging.Record{
			Level:         slog.LevelInfo,
			Message:       "Tool invocation started",
			Tool:          name,
			CorrelationID: id,
			Fields:        map[string]any{"arguments": args},
		})

		defer func() {
			if r := recover(); r != nil {
				value = nil
				err = &errors.ToolExecutionError{Tool: name, Err: fmt.Errorf("panic: %v", r)}
			}

			duration := time.Since(start).Milliseconds()

			rec := logging.Record{
				Level:         slog.LevelInfo,
				Message:       "Tool invocation completed",
				Tool:          name,
				CorrelationID: id,
				Status:        "success",
				DurationMs:    duration,
			}

			if err != nil {
				rec.Level = slog.LevelError
				rec.Status = "error"
				rec.Fields = map[string]any{"error": err.Error()}

				err = correlation.Tag(err, id)
			}

			log.Debug("Tool invocation completed", "correlation_id", id, "status", rec.Status, "duration_ms", duration)
			safeEmit(ctx, unified, rec)
		}()

		value, err = inner(ctx, args)

		return value, err
	}
}

// safeEmit shields the invocation from the logging path: an emission
// failure is reported to stderr and the call proceeds.
func safeEmit(ctx context.Context, unified *logging.UnifiedLogger, rec logging.Record) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "tool logger: emit failed: %v\n", r)
		}
	}()

	if unified != nil {
		unified.Emit(ctx, rec)
	}
}
