package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const defaultFilePath = "logs/unified_logs.jsonl"

// fileSink appends one JSON object per record to a log file.
type fileSink struct {
	mu sync.Mutex
	f  *os.File
}

func newFileSink(path string) (*fileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &fileSink{f: f}, nil
}

func (s *fileSink) Write(_ context.Context, rec Record) error {
	line, err := json.Marshal(map[string]any{
		"timestamp":      rec.Time.Format("2006-01-02T15:04:05.000Z07:00"),
		"level":          rec.Level.String(),
		"message":        rec.Message,
		"tool":           rec.Tool,
		"correlation_id": rec.CorrelationID,
		"status":         rec.Status,
		"duration_ms":    rec.DurationMs,
		"fields":         rec.Fields,
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	return nil
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.f.Close()
}
