// Package batch executes ordered lists of heterogeneous tool operations
// with bounded concurrency. Operations are validated up front, dispatched
// to registered handlers in fixed-size concurrent windows, and aggregated
// into a single report that never aborts on an individual failure.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AnEntrypoint/sandboxbox/internal/audit"
	"github.com/AnEntrypoint/sandboxbox/internal/handler"
	"github.com/AnEntrypoint/sandboxbox/internal/protocol"
	"github.com/AnEntrypoint/sandboxbox/internal/security"
)

// DefaultWindowSize is the concurrent dispatch bound when none is configured.
const DefaultWindowSize = 5

// workingDirectoryKey is the argument defaulted from the executor when an
// operation does not set its own.
const workingDirectoryKey = "workingDirectory"

// Executor dispatches validated operations to registered handlers.
// It holds no hidden state: everything an Execute call needs is carried
// by this struct, constructed once by the caller.
type Executor struct {
	// Registry resolves tool names to handlers.
	Registry *handler.Registry
	// Requirements is the per-tool required-argument table.
	Requirements Requirements
	// WindowSize bounds concurrent dispatch; DefaultWindowSize when zero.
	WindowSize int
	// DefaultWorkdir fills workingDirectory for operations that omit it.
	DefaultWorkdir string
	// Logger receives structured dispatch logging.
	Logger *slog.Logger
	// Audit records operation-level events.
	Audit audit.Logger
}

// Execute validates ops and dispatches them in sequential windows of
// WindowSize concurrent operations. A non-nil error is always a
// *ValidationError and means nothing was dispatched. Handler failures are
// downgraded to per-operation results: the returned report is complete
// whenever the error is nil.
func (e *Executor) Execute(ctx context.Context, ops []Operation) (*protocol.BatchReport, error) {
	started := time.Now()

	if len(ops) == 0 {
		return nil, &ValidationError{Message: "operations must be a non-empty array"}
	}
	if err := e.validate(ops); err != nil {
		e.logWarn("batch validation failed", "error", err.Message, "operations", len(ops))
		return nil, err
	}

	window := e.WindowSize
	if window <= 0 {
		window = DefaultWindowSize
	}

	e.logInfo("batch dispatch", "operations", len(ops), "window_size", window)

	// Results are written by input index, never appended: the slot for
	// each operation is fixed regardless of completion order.
	results := make([]protocol.OperationResult, len(ops))

	for start := 0; start < len(ops); start += window {
		end := min(start+window, len(ops))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int, op Operation) {
				defer wg.Done()
				results[idx] = e.dispatch(ctx, idx, op)
			}(i, ops[i])
		}
		wg.Wait()
	}

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}
	failed := len(ops) - succeeded
	rate := float64(succeeded) / float64(len(ops))

	report := &protocol.BatchReport{
		TotalOperations:      len(ops),
		SuccessfulOperations: succeeded,
		FailedOperations:     failed,
		SuccessRate:          rate,
		ExecutionTimeMs:      time.Since(started).Milliseconds(),
		Results:              results,
		TurnReduction: protocol.TurnReductionMetrics{
			PotentialTurnsSaved: len(ops) - 1,
			OperationsPerTurn:   len(ops),
			Efficiency:          efficiency(rate),
		},
	}

	e.logInfo("batch complete",
		"operations", len(ops),
		"succeeded", succeeded,
		"failed", failed,
		"duration_ms", report.ExecutionTimeMs,
	)

	return report, nil
}

// dispatch runs one operation and converts every failure mode, including
// a handler panic, into an OperationResult.
func (e *Executor) dispatch(ctx context.Context, idx int, op Operation) (out protocol.OperationResult) {
	started := time.Now()
	out = protocol.OperationResult{
		OperationIndex: idx,
		Tool:           op.Tool,
	}

	defer func() {
		if r := recover(); r != nil {
			out.Success = false
			out.Content = nil
			out.Error = fmt.Sprintf("handler panic: %v", r)
			out.ExecutionTimeMs = time.Since(started).Milliseconds()
			e.record(ctx, "operation_panic", op.Tool, idx, out.Error)
		}
	}()

	h, ok := e.Registry.Lookup(op.Tool)
	if !ok {
		// Unreachable after validation; kept as a defensive result
		// rather than a panic because results must always resolve.
		out.Error = fmt.Sprintf("unknown tool: %s", op.Tool)
		out.ExecutionTimeMs = time.Since(started).Milliseconds()
		return out
	}

	args := e.argumentsFor(op)

	e.logDebug("operation dispatch",
		"tool", op.Tool,
		"operation_index", idx,
		"args", security.RedactArguments(args),
	)

	content, err := h(ctx, args)
	out.ExecutionTimeMs = time.Since(started).Milliseconds()
	if err != nil {
		out.Error = err.Error()
		e.record(ctx, "operation_error", op.Tool, idx, err.Error())
		return out
	}

	out.Success = true
	out.Content = content
	e.record(ctx, "operation_ok", op.Tool, idx, "")
	return out
}

// argumentsFor clones the operation's argument map and fills the working
// directory default. The caller's map is never mutated; a per-operation
// override always wins.
func (e *Executor) argumentsFor(op Operation) map[string]any {
	args := make(map[string]any, len(op.Arguments)+1)
	for key, value := range op.Arguments {
		args[key] = value
	}
	if _, ok := args[workingDirectoryKey]; !ok && e.DefaultWorkdir != "" {
		args[workingDirectoryKey] = e.DefaultWorkdir
	}
	return args
}

func efficiency(rate float64) string {
	switch {
	case rate == 1:
		return protocol.EfficiencyOptimal
	case rate > 0.8:
		return protocol.EfficiencyGood
	default:
		return protocol.EfficiencyNeedsImprovement
	}
}

func (e *Executor) record(ctx context.Context, eventType, tool string, idx int, detail string) {
	if e.Audit == nil {
		return
	}
	e.Audit.Record(ctx, audit.Event{
		Type:           eventType,
		Tool:           tool,
		OperationIndex: idx,
		Detail:         detail,
	})
}

func (e *Executor) logInfo(msg string, attrs ...any) {
	if e.Logger != nil {
		e.Logger.Info(msg, attrs...)
	}
}

func (e *Executor) logWarn(msg string, attrs ...any) {
	if e.Logger != nil {
		e.Logger.Warn(msg, attrs...)
	}
}

func (e *Executor) logDebug(msg string, attrs ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, attrs...)
	}
}
