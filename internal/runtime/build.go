// Package runtime assembles the MCP server: it builds the handler
// registry from the built-in tools and the YAML tool declarations, wires
// the batch executor, usage guard, idempotency cache and audit logging,
// and registers everything on an mcp.Server.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/AnEntrypoint/sandboxbox/internal/audit"
	"github.com/AnEntrypoint/sandboxbox/internal/batch"
	"github.com/AnEntrypoint/sandboxbox/internal/constants"
	"github.com/AnEntrypoint/sandboxbox/internal/guard"
	"github.com/AnEntrypoint/sandboxbox/internal/handler"
	"github.com/AnEntrypoint/sandboxbox/internal/idempotency"
	"github.com/AnEntrypoint/sandboxbox/internal/procrun"
	"github.com/AnEntrypoint/sandboxbox/internal/protocol"
	"github.com/AnEntrypoint/sandboxbox/internal/safety"
	"github.com/AnEntrypoint/sandboxbox/internal/security"
	"github.com/AnEntrypoint/sandboxbox/internal/serverconf"
	"github.com/AnEntrypoint/sandboxbox/internal/timeutil"
	"github.com/AnEntrypoint/sandboxbox/internal/tools"
)

// Builder constructs an MCP server from the YAML config.
type Builder struct {
	// Logger is used for structured logging.
	Logger *slog.Logger
	// Audit records batch and tool events.
	Audit audit.Logger
	// Cache stores idempotent batch responses.
	Cache *idempotency.Cache
	// CacheKeyStrategy selects how cache keys are computed.
	CacheKeyStrategy string
	// Workdir is the default working directory for operations.
	Workdir string
}

// toolMeta describes one individually registered MCP tool.
type toolMeta struct {
	name        string
	title       string
	description string
	schema      map[string]any
	timeout     time.Duration
}

// Build creates an MCP server with the batch executor, individual tools
// and static resources.
func (b Builder) Build(cfg *serverconf.Config) (*mcp.Server, error) {
	defaultTimeout := timeutil.ParseDurationOrDefault(cfg.Batch.DefaultTimeout, procrun.DefaultTimeout)
	runner := procrun.New(defaultTimeout, b.Logger)
	checker := safety.NewChecker(cfg.Safety.DeniedPatterns...)
	limits := guard.New(guard.Policy{
		MaxTotal:      cfg.Limits.MaxTotal,
		RatePerMinute: cfg.Limits.RatePerMinute,
	})

	registry := handler.NewRegistry()
	metas := make([]toolMeta, 0, len(cfg.Tools)+5)

	register := func(meta toolMeta, h handler.Handler) error {
		if err := registry.Register(meta.name, b.guarded(limits, meta.name, h)); err != nil {
			return err
		}
		metas = append(metas, meta)
		return nil
	}

	for _, builtin := range builtinHandlers(runner, checker, defaultTimeout) {
		if err := register(builtin.meta, builtin.handle); err != nil {
			return nil, err
		}
	}

	extra := batch.Requirements{}
	for _, tc := range cfg.Tools {
		h, err := buildCustomHandler(runner, tc)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", tc.Name, err)
		}
		meta := toolMeta{
			name:        tc.Name,
			title:       tc.Title,
			description: tc.Description,
			schema:      tc.InputSchema,
			timeout:     timeutil.ParseDurationOrDefault(tc.Timeout, 0),
		}
		if err := register(meta, h); err != nil {
			return nil, err
		}
		if len(tc.Required) > 0 {
			extra[tc.Name] = tc.Required
		}
	}

	executor := &batch.Executor{
		Registry:       registry,
		Requirements:   batch.BuiltinRequirements().Merge(extra),
		WindowSize:     cfg.Batch.WindowSize,
		DefaultWorkdir: b.Workdir,
		Logger:         b.Logger,
		Audit:          b.Audit,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, nil)

	for _, res := range cfg.Resources {
		resource := res
		server.AddResource(&mcp.Resource{
			Name:        resource.Name,
			URI:         resource.URI,
			Description: resource.Description,
			MIMEType:    resource.MIMEType,
		}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{Text: resource.Text},
				},
			}, nil
		})
	}

	b.addBatchTool(server, executor)
	for _, meta := range metas {
		b.addSingleTool(server, registry, meta)
	}

	return server, nil
}

// guarded wraps a handler with the usage guard so both batch dispatch and
// individual tool calls share the same limits.
func (b Builder) guarded(limits *guard.Guard, name string, h handler.Handler) handler.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		if err := limits.Allow(name); err != nil {
			b.record(ctx, "limit_denied", name, err.Error(), "")
			return nil, err
		}
		return h(ctx, args)
	}
}

// batchInput is the wire shape accepted by batch_execute.
type batchInput struct {
	// Operations is the ordered list of tool invocations.
	Operations []batch.Operation `json:"operations"`
	// CorrelationID optionally links the call for idempotency caching.
	CorrelationID string `json:"correlation_id,omitempty"`
}

func (b Builder) addBatchTool(server *mcp.Server, executor *batch.Executor) {
	tool := &mcp.Tool{
		Name:  constants.ToolBatchExecute,
		Title: "Batch execute",
		Description: "Execute multiple tool operations in one call with bounded concurrency. " +
			"Each operation names a tool and its arguments; results come back in input order.",
		InputSchema: batchInputSchema(),
	}

	mcp.AddTool(server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, input batchInput) (*mcp.CallToolResult, protocol.BatchResponse, error) {
		correlationID := input.CorrelationID
		providedID := correlationID != ""
		if !providedID {
			correlationID = uuid.NewString()
		}

		if b.Logger != nil {
			b.Logger.Info("tool call",
				"tool", constants.ToolBatchExecute,
				"correlation_id", correlationID,
				"operations", len(input.Operations),
			)
		}
		b.record(ctx, "tool_call", constants.ToolBatchExecute, fmt.Sprintf("%d operations", len(input.Operations)), correlationID)

		cacheKey := ""
		if b.Cache != nil {
			key, err := buildCacheKey(constants.ToolBatchExecute, correlationID, providedID, input.Operations, b.CacheKeyStrategy)
			if err != nil {
				if b.Logger != nil {
					b.Logger.Warn("cache key build failed", "error", err)
				}
			} else {
				cacheKey = key
			}
			if cacheKey != "" {
				if cached, ok := b.Cache.Get(cacheKey); ok {
					cached.CorrelationID = correlationID
					b.record(ctx, "cache_hit", constants.ToolBatchExecute, "", correlationID)
					return nil, cached, nil
				}
			}
		}

		report, err := executor.Execute(ctx, input.Operations)
		if err != nil {
			var verr *batch.ValidationError
			if !errors.As(err, &verr) {
				verr = &batch.ValidationError{Message: err.Error()}
			}
			b.record(ctx, "validation_failed", constants.ToolBatchExecute, verr.Message, correlationID)
			return nil, protocol.BatchResponse{
				Success:           false,
				Error:             verr.Message,
				TurnReductionHint: turnReductionHint(len(input.Operations)),
				ValidationDetails: verr.Details,
				CorrelationID:     correlationID,
			}, nil
		}

		resp := protocol.BatchResponse{
			Success:       true,
			BatchReport:   report,
			CorrelationID: correlationID,
		}
		b.record(ctx, "batch_complete", constants.ToolBatchExecute,
			fmt.Sprintf("%d/%d succeeded", report.SuccessfulOperations, report.TotalOperations), correlationID)

		if b.Cache != nil && cacheKey != "" {
			b.Cache.Set(cacheKey, resp)
			b.record(ctx, "cache_store", constants.ToolBatchExecute, "", correlationID)
		}
		return nil, resp, nil
	})
}

func (b Builder) addSingleTool(server *mcp.Server, registry *handler.Registry, meta toolMeta) {
	h, ok := registry.Lookup(meta.name)
	if !ok {
		return
	}

	tool := &mcp.Tool{
		Name:        meta.name,
		Title:       meta.title,
		Description: meta.description,
	}
	// A nil map stored in the any-typed InputSchema field would be a
	// non-nil interface; the SDK would remarshal it to JSON null and
	// panic instead of inferring a schema. Leave the field nil instead.
	if meta.schema != nil {
		tool.InputSchema = meta.schema
	}

	mcp.AddTool(server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, protocol.ToolResponse, error) {
		correlationID := uuid.NewString()
		started := time.Now()

		args := make(map[string]any, len(input)+1)
		for key, value := range input {
			args[key] = value
		}
		if _, ok := args["workingDirectory"]; !ok && b.Workdir != "" {
			args["workingDirectory"] = b.Workdir
		}

		if b.Logger != nil {
			b.Logger.Info("tool call",
				"tool", meta.name,
				"correlation_id", correlationID,
				"args", security.RedactArguments(args),
			)
		}
		b.record(ctx, "tool_call", meta.name, "", correlationID)

		ctxTool := ctx
		if meta.timeout > 0 {
			var cancel context.CancelFunc
			ctxTool, cancel = context.WithTimeout(ctx, meta.timeout)
			defer cancel()
		}

		content, err := h(ctxTool, args)
		resp := protocol.ToolResponse{
			ExecutionTimeMs: time.Since(started).Milliseconds(),
			CorrelationID:   correlationID,
		}
		if err != nil {
			resp.Error = err.Error()
			b.record(ctx, "tool_error", meta.name, err.Error(), correlationID)
			return nil, resp, nil
		}
		resp.Success = true
		resp.Content = content
		b.record(ctx, "tool_ok", meta.name, "", correlationID)
		return nil, resp, nil
	})
}

type builtinTool struct {
	meta   toolMeta
	handle handler.Handler
}

func builtinHandlers(runner *procrun.Runner, checker *safety.Checker, defaultTimeout time.Duration) []builtinTool {
	bash := &tools.Bash{Runner: runner, Safety: checker, Timeout: defaultTimeout}
	node := tools.NewNode(runner, defaultTimeout)
	deno := tools.NewDeno(runner, defaultTimeout)
	search := &tools.Search{}
	find := &tools.Find{}

	return []builtinTool{
		{meta: builtinMeta(constants.ToolExecuteBash), handle: bash.Handle},
		{meta: builtinMeta(constants.ToolExecuteNode), handle: node.Handle},
		{meta: builtinMeta(constants.ToolExecuteDeno), handle: deno.Handle},
		{meta: builtinMeta(constants.ToolSearchCode), handle: search.Handle},
		{meta: builtinMeta(constants.ToolFindFiles), handle: find.Handle},
	}
}

func buildCustomHandler(runner *procrun.Runner, tc serverconf.ToolConfig) (handler.Handler, error) {
	timeout := timeutil.ParseDurationOrDefault(tc.Timeout, 0)
	switch tc.Kind {
	case constants.ToolKindShell:
		t := &tools.ShellCommand{
			Runner:  runner,
			Name:    tc.Name,
			Command: tc.Command,
			Args:    tc.Args,
			Env:     tc.Env,
			Timeout: timeout,
		}
		return t.Handle, nil
	case constants.ToolKindHTTP:
		t := &tools.HTTPCommand{
			Name:    tc.Name,
			URL:     tc.URL,
			Method:  tc.Method,
			Headers: tc.Headers,
			Timeout: timeout,
		}
		return t.Handle, nil
	default:
		return nil, fmt.Errorf("unknown tool kind: %s", tc.Kind)
	}
}

func turnReductionHint(operations int) string {
	if operations < 2 {
		return "Group related operations into one batch_execute call to save a round trip per operation."
	}
	return fmt.Sprintf(
		"Fix the listed operations and resubmit them together: %d operations in one call still saves %d turns.",
		operations, operations-1)
}

func (b Builder) record(ctx context.Context, eventType, tool, detail, correlationID string) {
	if b.Audit == nil {
		return
	}
	b.Audit.Record(ctx, audit.Event{
		Type:           eventType,
		Tool:           tool,
		CorrelationID:  correlationID,
		OperationIndex: -1,
		Detail:         detail,
	})
}
