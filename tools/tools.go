// Package tools ships the reference tools registered by the bundled server
// binary. They are small on purpose: each one exercises a different part of
// the pipeline and doubles as a working example for new tool authors.
package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	scaffold "github.com/abnerjacobsen/mcp-cookie-cutter"
)

// Echo returns its message argument unchanged.
func Echo() scaffold.Tool {
	return scaffold.NewTool("echo", "Echo the message back to the caller",
		func(_ context.Context, args map[string]any) (any, error) {
			return args["message"], nil
		},
		scaffold.WithParams(scaffold.StringParam("message", true)),
	)
}

// Fail always returns an error carrying its message argument. It exists to
// demonstrate the normalized error shape produced by the exception boundary.
func Fail() scaffold.Tool {
	return scaffold.NewTool("fail", "Always fails with the given message",
		func(_ context.Context, args map[string]any) (any, error) {
			msg, _ := args["message"].(string)
			if msg == "" {
				msg = "requested failure"
			}
			return nil, fmt.Errorf("%s", msg)
		},
		scaffold.WithParams(scaffold.StringParam("message", false)),
	)
}

// Wait sleeps for the requested number of seconds and reports how long it
// actually slept. Useful for observing duration fields in log records.
func Wait() scaffold.Tool {
	return scaffold.NewTool("wait", "Sleep for the given number of seconds",
		func(ctx context.Context, args map[string]any) (any, error) {
			seconds, _ := args["seconds"].(float64)
			if seconds < 0 {
				return nil, fmt.Errorf("seconds must not be negative, got %v", seconds)
			}

			start := time.Now()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(seconds * float64(time.Second))):
			}
			return fmt.Sprintf("waited %.2fs", time.Since(start).Seconds()), nil
		},
		scaffold.WithParams(scaffold.FloatParam("seconds", true)),
	)
}

// ProcessBatch upper-cases each item of a batch concurrently. An item equal
// to "fail" errors, which makes it a convenient fixture for observing
// per-item outcomes in a partially failing batch.
func ProcessBatch() scaffold.Tool {
	return scaffold.NewTool("process_batch", "Process a batch of items concurrently",
		func(_ context.Context, args map[string]any) (any, error) {
			item, _ := args["items"].(string)
			if item == "fail" {
				return nil, fmt.Errorf("item rejected")
			}
			return strings.ToUpper(item), nil
		},
		scaffold.WithParams(scaffold.StringListParam("items", true)),
		scaffold.WithParallel(),
	)
}

// All returns every reference tool in registration order.
func All() []scaffold.Tool {
	return []scaffold.Tool{Echo(), Fail(), Wait(), ProcessBatch()}
}
