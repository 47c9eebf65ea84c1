// Package executor implements the tool execution engine.
//
// Execute returns exactly one Result per call and never panics across its
// boundary: not-found, disabled, validation, transport, timeout and provider
// failures are all represented in the result.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/internal/service/registry"
	"github.com/mcpbridge/mcpbridge/internal/telemetry"
	"github.com/mcpbridge/mcpbridge/internal/toolschema"
)

// Handler is a built-in tool implementation. Handlers are pure functions of
// their declared action parameters.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// RemoteCaller sends a tool call to a provider. Implemented by the discovery
// protocol client.
type RemoteCaller interface {
	CallTool(
		ctx context.Context,
		p *model.Provider,
		toolName string,
		args map[string]any,
		timeout time.Duration,
	) (json.RawMessage, error)
}

// Config holds the collaborators of an Engine.
type Config struct {
	Tools     *registry.ToolRegistry
	Providers *registry.ProviderRegistry
	Remote    RemoteCaller
	Metrics   telemetry.CustomMetrics
	Logger    *zap.Logger

	// DefaultTimeout applies to tool calls that declare no timeout of
	// their own. Defaults to 30 seconds.
	DefaultTimeout time.Duration
}

// Engine resolves, validates and dispatches tool executions.
type Engine struct {
	tools     *registry.ToolRegistry
	providers *registry.ProviderRegistry
	remote    RemoteCaller
	metrics   telemetry.CustomMetrics
	logger    *zap.Logger

	defaultTimeout time.Duration

	builtins map[string]Handler
}

// NewEngine creates an execution engine.
func NewEngine(c *Config) *Engine {
	e := &Engine{
		tools:          c.Tools,
		providers:      c.Providers,
		remote:         c.Remote,
		metrics:        c.Metrics,
		logger:         c.Logger,
		defaultTimeout: c.DefaultTimeout,
		builtins:       make(map[string]Handler),
	}
	if e.metrics == nil {
		e.metrics = telemetry.NewNoopCustomMetrics()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.defaultTimeout <= 0 {
		e.defaultTimeout = 30 * time.Second
	}
	return e
}

// RegisterBuiltin installs the handler backing an internal tool.
// Built-in tools are matched to handlers by tool name.
func (e *Engine) RegisterBuiltin(name string, h Handler) {
	e.builtins[name] = h
}

// Result is the uniform outcome of one execution attempt.
type Result struct {
	ToolID    string
	Input     map[string]any
	Output    any
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

// Success reports whether the execution produced an output.
func (r Result) Success() bool { return r.Err == nil }

// Record converts the result into an immutable execution record.
func (r Result) Record() model.ExecutionRecord {
	rec := model.ExecutionRecord{
		ToolID:    r.ToolID,
		Input:     r.Input,
		Output:    r.Output,
		Success:   r.Err == nil,
		Duration:  r.Duration,
		Timestamp: r.Timestamp,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

// Execute runs the tool with the given identifier against the input payload.
func (e *Engine) Execute(ctx context.Context, toolID string, input map[string]any) Result {
	started := time.Now()
	outcome := telemetry.ToolCallOutcomeError
	defer func() {
		e.metrics.RecordToolCall(ctx, toolID, outcome, time.Since(started))
	}()

	result := e.execute(ctx, toolID, input)
	result.ToolID = toolID
	result.Input = input
	result.Duration = time.Since(started)
	result.Timestamp = started

	if result.Err == nil {
		outcome = telemetry.ToolCallOutcomeSuccess
	} else {
		e.logger.Warn("tool execution failed",
			zap.String("tool_id", toolID),
			zap.Error(result.Err),
		)
	}
	return result
}

func (e *Engine) execute(ctx context.Context, toolID string, input map[string]any) Result {
	tool, err := e.tools.Get(toolID)
	if err != nil {
		return Result{Err: err}
	}
	if !tool.Enabled {
		// disabled tools never reach the dispatch step
		return Result{Err: &model.DisabledError{Kind: "tool", ID: toolID}}
	}

	sig := toolschema.Translate(tool.InputSchema)
	validated, err := sig.Validate(input)
	if err != nil {
		// provider-backed tools must reject invalid input before it goes
		// over the wire; built-ins get the same treatment
		return Result{Err: err}
	}

	timeout := e.defaultTimeout
	if tool.TimeoutSeconds > 0 {
		timeout = time.Duration(tool.TimeoutSeconds) * time.Second
	}

	if tool.ProviderID == "" {
		return e.executeBuiltin(ctx, tool, validated, timeout)
	}
	return e.executeRemote(ctx, tool, validated, timeout)
}

func (e *Engine) executeBuiltin(
	ctx context.Context, tool *model.Tool, args map[string]any, timeout time.Duration,
) (result Result) {
	handler, ok := e.builtins[tool.Name]
	if !ok {
		return Result{Err: &model.ExecutionError{
			ToolID:  tool.ID,
			Message: fmt.Sprintf("no built-in handler registered for tool %q", tool.Name),
		}}
	}

	// a panicking handler must not escape the engine boundary
	defer func() {
		if rec := recover(); rec != nil {
			result = Result{Err: &model.ExecutionError{
				ToolID:  tool.ID,
				Message: fmt.Sprintf("handler panic: %v", rec),
			}}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := handler(ctx, args)
	if err != nil {
		var eerr *model.ExecutionError
		if errors.As(err, &eerr) {
			return Result{Err: err}
		}
		return Result{Err: &model.ExecutionError{ToolID: tool.ID, Err: err}}
	}
	return Result{Output: output}
}

func (e *Engine) executeRemote(
	ctx context.Context, tool *model.Tool, args map[string]any, timeout time.Duration,
) Result {
	provider, err := e.providers.Get(tool.ProviderID)
	if err != nil {
		return Result{Err: &model.ExecutionError{ToolID: tool.ID, Err: err}}
	}
	if !provider.Enabled {
		return Result{Err: &model.DisabledError{Kind: "provider", ID: provider.ID}}
	}

	raw, err := e.remote.CallTool(ctx, provider, tool.Name, args, timeout)
	if err != nil {
		var eerr *model.ExecutionError
		if errors.As(err, &eerr) {
			if eerr.ToolID == "" {
				eerr.ToolID = tool.ID
			}
			return Result{Err: eerr}
		}
		return Result{Err: &model.ExecutionError{ToolID: tool.ID, Err: err}}
	}

	// the provider's result payload is forwarded unchanged
	var output any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &output); err != nil {
			return Result{Err: &model.ExecutionError{
				ToolID:  tool.ID,
				Message: fmt.Sprintf("malformed result payload: %v", err),
			}}
		}
	}
	return Result{Output: output}
}
