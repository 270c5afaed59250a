package pipeline

import (
	"context"
	"fmt"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/correlation"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// ExceptionHandle returns the outermost stage: the single point translating
// any failure raised by the inner stages or the tool body into the
// wire-level Result shape.
//
// Errors keep the correlation id attached by the logging stage; failures
// raised outside that scope fall back to the id active in ctx.
func ExceptionHandle(name string, inner ToolFunc) func(ctx context.Context, args map[string]any) Result {
	return func(ctx context.Context, args map[string]any) (res Result) {
		defer func() {
			if r := recover(); r != nil {
				res = errorResult(ctx, &errors.ToolExecutionError{
					Tool: name,
					Err:  fmt.Errorf("panic: %v", r),
				})
			}
		}()

		value, err := inner(ctx, args)
		if err != nil {
			return errorResult(ctx, err)
		}

		return Result{Value: value}
	}
}

func errorResult(ctx context.Context, err error) Result {
	id, ok := correlation.IDFromError(err)
	if !ok {
		id = correlation.Active(ctx)
	}

	return Result{
		IsError:       true,
		ErrorKind:     errors.KindOf(err),
		ErrorMessage:  err.Error(),
		CorrelationID: id,
	}
}
