package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnEntrypoint/sandboxbox/internal/handler"
	"github.com/AnEntrypoint/sandboxbox/internal/protocol"
)

func newRegistry(t *testing.T, handlers map[string]handler.Handler) *handler.Registry {
	t.Helper()
	registry := handler.NewRegistry()
	for name, h := range handlers {
		require.NoError(t, registry.Register(name, h))
	}
	return registry
}

func echoHandler(_ context.Context, args map[string]any) (any, error) {
	return args["value"], nil
}

func TestExecuteEmptyBatch(t *testing.T) {
	executor := &Executor{Registry: handler.NewRegistry()}

	report, err := executor.Execute(context.Background(), nil)

	require.Nil(t, report)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "operations must be a non-empty array", verr.Message)
}

func TestExecutePreservesInputOrder(t *testing.T) {
	executor := &Executor{
		Registry: newRegistry(t, map[string]handler.Handler{"echo": echoHandler}),
	}

	ops := make([]Operation, 12)
	for i := range ops {
		ops[i] = Operation{Tool: "echo", Arguments: map[string]any{"value": i}}
	}

	report, err := executor.Execute(context.Background(), ops)
	require.NoError(t, err)
	require.Len(t, report.Results, 12)

	for i, res := range report.Results {
		assert.Equal(t, i, res.OperationIndex)
		assert.Equal(t, i, res.Content)
		assert.True(t, res.Success)
	}
}

func TestExecuteBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int64
	slow := func(ctx context.Context, _ map[string]any) (any, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return nil, nil
	}

	executor := &Executor{
		Registry:   newRegistry(t, map[string]handler.Handler{"slow": slow}),
		WindowSize: 5,
	}

	ops := make([]Operation, 17)
	for i := range ops {
		ops[i] = Operation{Tool: "slow", Arguments: map[string]any{}}
	}

	report, err := executor.Execute(context.Background(), ops)
	require.NoError(t, err)
	assert.Equal(t, 17, report.TotalOperations)
	assert.LessOrEqual(t, peak.Load(), int64(5))
}

func TestExecuteFailSoft(t *testing.T) {
	boom := func(_ context.Context, _ map[string]any) (any, error) {
		return nil, fmt.Errorf("boom")
	}
	executor := &Executor{
		Registry: newRegistry(t, map[string]handler.Handler{
			"ok":   echoHandler,
			"boom": boom,
		}),
	}

	ops := []Operation{
		{Tool: "ok", Arguments: map[string]any{"value": "a"}},
		{Tool: "boom", Arguments: map[string]any{}},
		{Tool: "ok", Arguments: map[string]any{"value": "b"}},
		{Tool: "boom", Arguments: map[string]any{}},
		{Tool: "boom", Arguments: map[string]any{}},
		{Tool: "ok", Arguments: map[string]any{"value": "c"}},
	}

	report, err := executor.Execute(context.Background(), ops)
	require.NoError(t, err)

	assert.Equal(t, 6, report.TotalOperations)
	assert.Equal(t, 3, report.SuccessfulOperations)
	assert.Equal(t, 3, report.FailedOperations)
	assert.InDelta(t, 0.5, report.SuccessRate, 1e-9)

	assert.False(t, report.Results[1].Success)
	assert.Equal(t, "boom", report.Results[1].Error)
	assert.Nil(t, report.Results[1].Content)
	assert.True(t, report.Results[5].Success)
}

func TestExecuteRecoversHandlerPanic(t *testing.T) {
	panics := func(_ context.Context, _ map[string]any) (any, error) {
		panic("unexpected state")
	}
	executor := &Executor{
		Registry: newRegistry(t, map[string]handler.Handler{
			"panics": panics,
			"ok":     echoHandler,
		}),
	}

	ops := []Operation{
		{Tool: "panics", Arguments: map[string]any{}},
		{Tool: "ok", Arguments: map[string]any{"value": "fine"}},
	}

	report, err := executor.Execute(context.Background(), ops)
	require.NoError(t, err)

	assert.False(t, report.Results[0].Success)
	assert.Equal(t, "handler panic: unexpected state", report.Results[0].Error)
	assert.True(t, report.Results[1].Success)
}

func TestExecuteDefaultsWorkingDirectory(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]string{}
	capture := func(_ context.Context, args map[string]any) (any, error) {
		dir, _ := args["workingDirectory"].(string)
		idx, _ := args["idx"].(int)
		mu.Lock()
		seen[idx] = dir
		mu.Unlock()
		return nil, nil
	}

	executor := &Executor{
		Registry:       newRegistry(t, map[string]handler.Handler{"capture": capture}),
		DefaultWorkdir: "/srv/work",
	}

	ops := []Operation{
		{Tool: "capture", Arguments: map[string]any{"idx": 0}},
		{Tool: "capture", Arguments: map[string]any{"idx": 1, "workingDirectory": "/tmp/override"}},
	}

	_, err := executor.Execute(context.Background(), ops)
	require.NoError(t, err)

	assert.Equal(t, "/srv/work", seen[0])
	assert.Equal(t, "/tmp/override", seen[1])
}

func TestExecuteDoesNotMutateCallerArguments(t *testing.T) {
	executor := &Executor{
		Registry:       newRegistry(t, map[string]handler.Handler{"echo": echoHandler}),
		DefaultWorkdir: "/srv/work",
	}

	args := map[string]any{"value": "x"}
	_, err := executor.Execute(context.Background(), []Operation{{Tool: "echo", Arguments: args}})
	require.NoError(t, err)

	assert.NotContains(t, args, "workingDirectory")
}

func TestExecuteEfficiencyLabels(t *testing.T) {
	boom := func(_ context.Context, _ map[string]any) (any, error) {
		return nil, fmt.Errorf("boom")
	}
	executor := &Executor{
		Registry: newRegistry(t, map[string]handler.Handler{
			"ok":   echoHandler,
			"boom": boom,
		}),
	}

	tests := []struct {
		name string
		ops  []Operation
		want string
	}{
		{
			name: "all succeed",
			ops: []Operation{
				{Tool: "ok", Arguments: map[string]any{}},
				{Tool: "ok", Arguments: map[string]any{}},
			},
			want: protocol.EfficiencyOptimal,
		},
		{
			name: "one of ten fails",
			ops: append(
				[]Operation{{Tool: "boom", Arguments: map[string]any{}}},
				func() []Operation {
					ops := make([]Operation, 9)
					for i := range ops {
						ops[i] = Operation{Tool: "ok", Arguments: map[string]any{}}
					}
					return ops
				}()...,
			),
			want: protocol.EfficiencyGood,
		},
		{
			name: "half fail",
			ops: []Operation{
				{Tool: "ok", Arguments: map[string]any{}},
				{Tool: "boom", Arguments: map[string]any{}},
			},
			want: protocol.EfficiencyNeedsImprovement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := executor.Execute(context.Background(), tt.ops)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.TurnReduction.Efficiency)
			assert.Equal(t, len(tt.ops)-1, report.TurnReduction.PotentialTurnsSaved)
			assert.Equal(t, len(tt.ops), report.TurnReduction.OperationsPerTurn)
		})
	}
}
