package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ToolCallOutcome labels the result of a tool call metric sample.
type ToolCallOutcome string

const (
	ToolCallOutcomeSuccess ToolCallOutcome = "success"
	ToolCallOutcomeError   ToolCallOutcome = "error"
)

// CustomMetrics records mcpbridge-specific metrics.
// A no-op implementation is used when telemetry is disabled, so callers can
// record unconditionally without checking whether metrics are enabled.
type CustomMetrics interface {
	// RecordToolCall records one tool execution attempt.
	RecordToolCall(ctx context.Context, toolID string, outcome ToolCallOutcome, duration time.Duration)

	// RecordTurn records one handled inbound message.
	RecordTurn(ctx context.Context, channelID string, toolCount int, failed bool)
}

type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns a CustomMetrics that records nothing.
func NewNoopCustomMetrics() CustomMetrics {
	return &noopCustomMetrics{}
}

func (n *noopCustomMetrics) RecordToolCall(context.Context, string, ToolCallOutcome, time.Duration) {
}

func (n *noopCustomMetrics) RecordTurn(context.Context, string, int, bool) {}

type otelCustomMetrics struct {
	toolCalls        metric.Int64Counter
	toolCallDuration metric.Float64Histogram
	turns            metric.Int64Counter
	turnToolCount    metric.Int64Histogram
}

// NewOtelCustomMetrics creates the real metrics implementation on top of the
// given meter.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	toolCalls, err := meter.Int64Counter(
		"mcpbridge.tool_calls",
		metric.WithDescription("Number of tool execution attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_calls counter: %w", err)
	}

	toolCallDuration, err := meter.Float64Histogram(
		"mcpbridge.tool_call_duration",
		metric.WithDescription("Duration of tool execution attempts"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_call_duration histogram: %w", err)
	}

	turns, err := meter.Int64Counter(
		"mcpbridge.turns",
		metric.WithDescription("Number of handled inbound messages"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create turns counter: %w", err)
	}

	turnToolCount, err := meter.Int64Histogram(
		"mcpbridge.turn_tool_count",
		metric.WithDescription("Number of tools selected per turn"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create turn_tool_count histogram: %w", err)
	}

	return &otelCustomMetrics{
		toolCalls:        toolCalls,
		toolCallDuration: toolCallDuration,
		turns:            turns,
		turnToolCount:    turnToolCount,
	}, nil
}

func (m *otelCustomMetrics) RecordToolCall(
	ctx context.Context, toolID string, outcome ToolCallOutcome, duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("tool_id", toolID),
		attribute.String("outcome", string(outcome)),
	)
	m.toolCalls.Add(ctx, 1, attrs)
	m.toolCallDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *otelCustomMetrics) RecordTurn(ctx context.Context, channelID string, toolCount int, failed bool) {
	attrs := metric.WithAttributes(
		attribute.String("channel_id", channelID),
		attribute.Bool("failed", failed),
	)
	m.turns.Add(ctx, 1, attrs)
	m.turnToolCount.Record(ctx, int64(toolCount), attrs)
}
