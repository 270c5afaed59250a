package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	scafferrors "github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/logging"
)

// memSink captures unified records for assertions.
type memSink struct {
	mu      sync.Mutex
	records []logging.Record
}

func (s *memSink) Write(_ context.Context, rec logging.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) all() []logging.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]logging.Record(nil), s.records...)
}

func echoTool() Tool {
	return Tool{
		Name:        "echo",
		Description: "Echo the message back",
		Params: []Param{
			{Name: "message", Type: TypeString, Required: true},
		},
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			return args["message"], nil
		},
	}
}

func batchTool() Tool {
	return Tool{
		Name:        "process_batch",
		Description: "Upper-case a batch of items",
		Params: []Param{
			{Name: "items", Type: TypeStringList, Required: true},
		},
		Parallel: true,
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			item, _ := args["items"].(string)
			if item == "fail" {
				return nil, errors.New("item rejected")
			}

			return strings.ToUpper(item), nil
		},
	}
}

func TestChainPreservesMetadata(t *testing.T) {
	inv, err := Chain(echoTool(), Deps{})
	require.NoError(t, err)

	require.Equal(t, "echo", inv.Name())
	require.Equal(t, "Echo the message back", inv.Description())
	require.False(t, inv.Parallel())

	schema := inv.tool.Schema()
	require.Equal(t, "object", schema.Type)
	require.Contains(t, schema.Properties, "message")
	require.Equal(t, []string{"message"}, schema.Required)

	pinv, err := Chain(batchTool(), Deps{})
	require.NoError(t, err)
	require.Equal(t, "process_batch", pinv.Name())
	require.True(t, pinv.Parallel())
	require.Equal(t, "array", pinv.tool.Schema().Properties["items"].Type)
}

func TestChainRejectsInvalidTools(t *testing.T) {
	_, err := Chain(Tool{Handler: func(context.Context, map[string]any) (any, error) { return nil, nil }}, Deps{})
	require.Error(t, err)

	_, err = Chain(Tool{Name: "no_handler"}, Deps{})
	require.Error(t, err)

	noList := batchTool()
	noList.Params = []Param{{Name: "items", Type: TypeString, Required: true}}
	_, err = Chain(noList, Deps{})
	require.ErrorIs(t, err, scafferrors.ErrNoListParameter)
}

func TestTypeConvertCoercesDeclaredParams(t *testing.T) {
	var got map[string]any

	conv := TypeConvert([]Param{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "count", Type: TypeInt, Required: true},
		{Name: "ratio", Type: TypeFloat},
		{Name: "dry_run", Type: TypeBool},
		{Name: "tags", Type: TypeStringList},
		{Name: "extra", Type: TypeAny},
	}, func(_ context.Context, args map[string]any) (any, error) {
		got = args

		return nil, nil
	})

	_, err := conv(context.Background(), map[string]any{
		"name":       123,
		"count":      "42",
		"ratio":      "2.5",
		"dry_run":    "true",
		"tags":       []any{"a", "b"},
		"extra":      map[string]any{"k": "v"},
		"undeclared": "dropped",
	})
	require.NoError(t, err)

	require.Equal(t, "123", got["name"])
	require.Equal(t, 42, got["count"])
	require.Equal(t, 2.5, got["ratio"])
	require.Equal(t, true, got["dry_run"])
	require.Equal(t, []string{"a", "b"}, got["tags"])
	require.Equal(t, map[string]any{"k": "v"}, got["extra"])
	require.NotContains(t, got, "undeclared")
}

func TestTypeConvertFailureNamesParamAndSkipsBody(t *testing.T) {
	invoked := false

	conv := TypeConvert([]Param{
		{Name: "count", Type: TypeInt, Required: true},
	}, func(_ context.Context, _ map[string]any) (any, error) {
		invoked = true

		return nil, nil
	})

	_, err := conv(context.Background(), map[string]any{"count": "not-a-number"})
	require.Error(t, err)
	require.False(t, invoked, "tool body must not run after a coercion failure")

	var tm *scafferrors.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	require.Equal(t, "count", tm.Param)
	require.Contains(t, err.Error(), `parameter "count"`)
}

func TestTypeConvertMissingRequiredParam(t *testing.T) {
	conv := TypeConvert([]Param{
		{Name: "message", Type: TypeString, Required: true},
	}, func(_ context.Context, _ map[string]any) (any, error) {
		t.Fatal("tool body must not run")

		return nil, nil
	})

	_, err := conv(context.Background(), map[string]any{})

	var tm *scafferrors.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	require.Equal(t, "message", tm.Param)
}

func TestTypeConvertOptionalParamMayBeOmitted(t *testing.T) {
	conv := TypeConvert([]Param{
		{Name: "limit", Type: TypeInt},
	}, func(_ context.Context, args map[string]any) (any, error) {
		_, present := args["limit"]
		require.False(t, present)

		return "ok", nil
	})

	value, err := conv(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "ok", value)
}

func TestExceptionHandleSuccessPassthrough(t *testing.T) {
	h := ExceptionHandle("echo", func(_ context.Context, _ map[string]any) (any, error) {
		return "hello", nil
	})

	res := h(context.Background(), nil)
	require.False(t, res.IsError)
	require.Equal(t, "hello", res.Value)
}

func TestExceptionHandleNormalizesErrors(t *testing.T) {
	h := ExceptionHandle("echo", func(_ context.Context, _ map[string]any) (any, error) {
		return nil, &scafferrors.TypeMismatchError{Param: "count", Expected: "integer", Received: "x"}
	})

	res := h(context.Background(), nil)
	require.True(t, res.IsError)
	require.Equal(t, scafferrors.KindTypeMismatch, res.ErrorKind)
	require.Contains(t, res.ErrorMessage, `parameter "count"`)
}

func TestExceptionHandleRecoversPanics(t *testing.T) {
	h := ExceptionHandle("echo", func(_ context.Context, _ map[string]any) (any, error) {
		panic("exploded")
	})

	res := h(context.Background(), nil)
	require.True(t, res.IsError)
	require.Equal(t, scafferrors.KindToolExecution, res.ErrorKind)
	require.Contains(t, res.ErrorMessage, "exploded")
}

func TestToolLogEmitsStartAndEndWithOneID(t *testing.T) {
	sink := &memSink{}
	unified := logging.New(logging.Options{}, sink)

	logged := ToolLog("echo", func(_ context.Context, args map[string]any) (any, error) {
		return args["message"], nil
	}, unified, nil)

	value, err := logged(context.Background(), map[string]any{"message": "hello"})
	require.NoError(t, err)
	require.Equal(t, "hello", value)

	records := sink.all()
	require.Len(t, records, 2)
	require.Equal(t, "Tool invocation started", records[0].Message)
	require.Equal(t, "Tool invocation completed", records[1].Message)
	require.Equal(t, "success", records[1].Status)
	require.True(t, strings.HasPrefix(records[0].CorrelationID, "call_"))
	require.Equal(t, records[0].CorrelationID, records[1].CorrelationID)
	require.GreaterOrEqual(t, records[1].DurationMs, int64(0))
}

func TestToolLogTagsErrorsWithCorrelationID(t *testing.T) {
	sink := &memSink{}
	unified := logging.New(logging.Options{}, sink)

	logged := ToolLog("fail", func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	}, unified, nil)

	_, err := logged(context.Background(), nil)
	require.Error(t, err)

	records := sink.all()
	require.Len(t, records, 2)
	require.Equal(t, "error", records[1].Status)

	// The returned error carries the id of the records it produced, so the
	// outermost stage can report the same id after this scope has ended.
	res := errorResult(context.Background(), err)
	require.Equal(t, records[1].CorrelationID, res.CorrelationID)
}

func TestToolLogEmitsEndRecordOnPanic(t *testing.T) {
	sink := &memSink{}
	unified := logging.New(logging.Options{}, sink)

	logged := ToolLog("explode", func(_ context.Context, _ map[string]any) (any, error) {
		panic("kaboom")
	}, unified, nil)

	_, err := logged(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kaboom")

	records := sink.all()
	require.Len(t, records, 2)
	require.Equal(t, "error", records[1].Status)
}

func TestConcurrentInvocationsGetDistinctIDs(t *testing.T) {
	sink := &memSink{}
	unified := logging.New(logging.Options{}, sink)

	inv, err := Chain(echoTool(), Deps{Unified: unified})
	require.NoError(t, err)

	const calls = 20

	var wg sync.WaitGroup

	for i := range calls {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			res := inv.Invoke(context.Background(), map[string]any{"message": fmt.Sprint(n)})
			require.False(t, res.IsError)
		}(i)
	}

	wg.Wait()

	starts := make(map[string]bool)

	for _, rec := range sink.all() {
		if rec.Message == "Tool invocation started" {
			require.False(t, starts[rec.CorrelationID], "duplicate correlation id %s", rec.CorrelationID)
			starts[rec.CorrelationID] = true
		}
	}

	require.Len(t, starts, calls)
}

func TestParallelizeMixedBatch(t *testing.T) {
	inv, err := Chain(batchTool(), Deps{})
	require.NoError(t, err)

	res := inv.Invoke(context.Background(), map[string]any{
		"items": []any{"alpha", "fail", "gamma"},
	})
	require.False(t, res.IsError, "partial batch failure must not fail the overall call")

	items, ok := res.Value.([]ItemResult)
	require.True(t, ok)
	require.Len(t, items, 3)

	require.True(t, items[0].OK)
	require.Equal(t, "ALPHA", items[0].Value)

	require.False(t, items[1].OK)
	require.Contains(t, items[1].Error, "item rejected")

	require.True(t, items[2].OK)
	require.Equal(t, "GAMMA", items[2].Value)
}

func TestParallelizeOrderingAndBoundedConcurrency(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)

	fanOut := Param{Name: "items", Type: TypeStringList}
	stage := Parallelize(fanOut, func(_ context.Context, args map[string]any) (any, error) {
		mu.Lock()
		inFlight++

		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()

		return args["items"], nil
	}, 2)

	items := make([]string, 10)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}

	value, err := stage(context.Background(), map[string]any{"items": items})
	require.NoError(t, err)

	results, ok := value.([]ItemResult)
	require.True(t, ok)
	require.Len(t, results, 10)

	for i, r := range results {
		require.Equal(t, i, r.Index)
		require.Equal(t, items[i], r.Item)
	}

	mu.Lock()
	defer mu.Unlock()
	require.LessOrEqual(t, peak, 2, "fan-out must respect the worker cap")
}

func TestParallelizeRejectsNonListArgument(t *testing.T) {
	fanOut := Param{Name: "items", Type: TypeStringList}
	stage := Parallelize(fanOut, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	}, 0)

	_, err := stage(context.Background(), map[string]any{"items": map[string]any{"not": "a list"}})

	var tm *scafferrors.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	require.Equal(t, "items", tm.Param)
}

func TestChainEndToEndErrorShape(t *testing.T) {
	sink := &memSink{}
	unified := logging.New(logging.Options{}, sink)

	inv, err := Chain(echoTool(), Deps{Unified: unified})
	require.NoError(t, err)

	res := inv.Invoke(context.Background(), map[string]any{"message": func() {}})
	require.True(t, res.IsError)
	require.Equal(t, scafferrors.KindTypeMismatch, res.ErrorKind)
	require.Contains(t, res.ErrorMessage, `parameter "message"`)
	require.True(t, strings.HasPrefix(res.CorrelationID, "call_"))

	records := sink.all()
	require.Len(t, records, 2)
	require.Equal(t, res.CorrelationID, records[1].CorrelationID)
}
