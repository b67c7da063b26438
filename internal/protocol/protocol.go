package protocol

// Statuses reported by external HTTP tool executors.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Batching efficiency labels reported to MCP clients.
const (
	EfficiencyOptimal          = "optimal"
	EfficiencyGood             = "good"
	EfficiencyNeedsImprovement = "needs_improvement"
)

// OperationResult is the terminal outcome of a single batched operation.
type OperationResult struct {
	// OperationIndex is the position of the operation in the submitted batch.
	OperationIndex int `json:"operationIndex"`
	// Tool is the tool name the operation was dispatched to.
	Tool string `json:"tool"`
	// Success indicates whether the handler completed without error.
	Success bool `json:"success"`
	// Content is the handler payload on success.
	Content any `json:"content,omitempty"`
	// Error is the handler failure message.
	Error string `json:"error,omitempty"`
	// ExecutionTimeMs is the handler wall time in milliseconds.
	ExecutionTimeMs int64 `json:"executionTimeMs"`
}

// TurnReductionMetrics quantifies the value of batching for the caller.
type TurnReductionMetrics struct {
	// PotentialTurnsSaved is the number of round trips avoided by batching.
	PotentialTurnsSaved int `json:"potentialTurnsSaved"`
	// OperationsPerTurn is the number of operations executed in this call.
	OperationsPerTurn int `json:"operationsPerTurn"`
	// Efficiency is a coarse label derived from the success rate.
	Efficiency string `json:"efficiency"`
}

// BatchReport aggregates the results of one completed batch dispatch.
type BatchReport struct {
	// TotalOperations is the batch size.
	TotalOperations int `json:"totalOperations"`
	// SuccessfulOperations counts operations that succeeded.
	SuccessfulOperations int `json:"successfulOperations"`
	// FailedOperations counts operations that failed.
	FailedOperations int `json:"failedOperations"`
	// SuccessRate is successes divided by total.
	SuccessRate float64 `json:"successRate"`
	// ExecutionTimeMs is the whole-batch wall time in milliseconds.
	ExecutionTimeMs int64 `json:"executionTimeMs"`
	// Results holds one entry per operation, ordered by operation index.
	Results []OperationResult `json:"results"`
	// TurnReduction reports batching-value metrics.
	TurnReduction TurnReductionMetrics `json:"turnReductionMetrics"`
}

// BatchResponse is the fixed JSON response returned to MCP clients for
// batch_execute. On success the embedded report is present; on validation
// failure only Error, TurnReductionHint and ValidationDetails are set.
type BatchResponse struct {
	// Success is true whenever dispatch completed, regardless of
	// individual operation outcomes.
	Success bool `json:"success"`
	*BatchReport
	// Error is the aggregated validation failure message.
	Error string `json:"error,omitempty"`
	// TurnReductionHint explains how to keep the batching value on failure.
	TurnReductionHint string `json:"turnReductionHint,omitempty"`
	// ValidationDetails itemizes validation faults.
	ValidationDetails []string `json:"validationDetails,omitempty"`
	// CorrelationID links related requests.
	CorrelationID string `json:"correlation_id"`
}

// ExecutorRequest is the JSON payload sent to external HTTP tool executors.
type ExecutorRequest struct {
	// Tool is the tool being executed.
	Tool string `json:"tool"`
	// Arguments are the operation arguments.
	Arguments map[string]any `json:"arguments"`
	// TimeoutSec tells the executor how long the caller will wait.
	TimeoutSec int `json:"timeout_sec,omitempty"`
}

// ExecutorResponse is the JSON payload expected from external HTTP tool
// executors.
type ExecutorResponse struct {
	// Status is success or error.
	Status string `json:"status"`
	// Result carries the executor payload.
	Result any `json:"result,omitempty"`
}

// ToolResponse is the fixed JSON response returned for individually
// registered tools.
type ToolResponse struct {
	// Success indicates whether the handler completed without error.
	Success bool `json:"success"`
	// Content is the handler payload on success.
	Content any `json:"content,omitempty"`
	// Error is the handler failure message.
	Error string `json:"error,omitempty"`
	// ExecutionTimeMs is the handler wall time in milliseconds.
	ExecutionTimeMs int64 `json:"executionTimeMs"`
	// CorrelationID links related requests.
	CorrelationID string `json:"correlation_id"`
}
