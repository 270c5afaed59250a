package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// consoleSink renders records through a slog text handler. Writes go to
// stderr so stdio transports keep stdout clean for protocol frames.
type consoleSink struct {
	log *slog.Logger
}

func newConsoleSink() *consoleSink {
	return newConsoleSinkTo(os.Stderr)
}

func newConsoleSinkTo(w io.Writer) *consoleSink {
	return &consoleSink{
		log: slog.New(slog.NewTextHandler(w, nil)),
	}
}

func (s *consoleSink) Write(ctx context.Context, rec Record) error {
	attrs := []any{
		slog.String("tool", rec.Tool),
		slog.String("correlation_id", rec.CorrelationID),
	}

	if rec.Status != "" {
		attrs = append(attrs, slog.String("status", rec.Status))
	}

	if rec.DurationMs > 0 {
		attrs = append(attrs, slog.Int64("duration_ms", rec.DurationMs))
	}

	for k, v := range rec.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	s.log.Log(ctx, rec.Level, rec.Message, attrs...)

	return nil
}

func (s *consoleSink) Close() error {
	return nil
}
