package model

import (
	"time"
)

// ExecutionRecord is an immutable audit of one tool invocation attempt.
// It is created once per execution and never mutated.
type ExecutionRecord struct {
	ToolID    string         `json:"tool_id"`
	Input     map[string]any `json:"input,omitempty"`
	Output    any            `json:"output,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Duration  time.Duration  `json:"duration"`
	Timestamp time.Time      `json:"timestamp"`
}
