package audit

import (
	"context"
	"log/slog"
)

// Event represents an audit entry for batch dispatch and tool execution.
type Event struct {
	// Type describes the event kind.
	Type string
	// Tool is the tool name, if the event concerns a single tool.
	Tool string
	// CorrelationID links related events.
	CorrelationID string
	// OperationIndex is the batch position for operation-scoped events, -1 otherwise.
	OperationIndex int
	// Detail provides additional context.
	Detail string
}

// Logger records audit events.
type Logger interface {
	// Record stores an audit event.
	Record(ctx context.Context, event Event)
}

// StdLogger writes audit events to slog.
type StdLogger struct {
	logger *slog.Logger
}

// New returns a StdLogger.
func New(logger *slog.Logger) *StdLogger {
	return &StdLogger{logger: logger}
}

// Record logs an audit event.
func (l *StdLogger) Record(_ context.Context, event Event) {
	if l == nil || l.logger == nil {
		return
	}
	attrs := []any{
		"type", event.Type,
		"tool", event.Tool,
		"correlation_id", event.CorrelationID,
		"detail", event.Detail,
	}
	if event.OperationIndex >= 0 {
		attrs = append(attrs, "operation_index", event.OperationIndex)
	}
	l.logger.Info("audit", attrs...)
}
