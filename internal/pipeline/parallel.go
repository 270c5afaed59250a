package pipeline

import (
	"context"
	"maps"

	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// ItemResult is the outcome of one sub-task in a parallel invocation.
type ItemResult struct {
	Index int    `json:"index"`
	Item  string `json:"item"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
	OK    bool   `json:"ok"`
}

// Parallelize returns a stage that fans one logical call out into one
// sub-invocation per element of the fan-out parameter, bounded by
// maxWorkers concurrent sub-tasks.
//
// Sub-task failures are isolated: a failing item never aborts its siblings,
// and the aggregate reports every item's outcome individually, in input
// order. The aggregate itself is a success even when items failed.
func Parallelize(fanOut Param, inner ToolFunc, maxWorkers int) ToolFunc {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	return func(ctx context.Context, args map[string]any) (any, error) {
		items, err := cast.ToStringSliceE(args[fanOut.Name])
		if err != nil {
			return nil, &errors.TypeMismatchError{
				Param:    fanOut.Name,
				Expected: string(TypeStringList),
				Received: args[fanOut.Name],
				Err:      err,
			}
		}

		results := make([]ItemResult, len(items))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxWorkers)

		for i, item := range items {
			g.Go(func() error {
				sub := maps.Clone(args)
				sub[fanOut.Name] = item

				value, err := inner(gctx, sub)
				if err != nil {
					results[i] = ItemResult{Index: i, Item: item, Error: err.Error()}
				} else {
					results[i] = ItemResult{Index: i, Item: item, Value: value, OK: true}
				}

				// Sub-task outcomes are collected, never returned, so one
				// failure cannot cancel the group.
				return nil
			})
		}

		_ = g.Wait()

		return results, nil
	}
}
