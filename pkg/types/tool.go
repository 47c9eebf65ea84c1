package types

import (
	"encoding/json"
	"time"
)

// Tool represents a callable capability registered in the mcpbridge registry.
type Tool struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
	Permissions []string `json:"permissions,omitempty"`

	// Channels is the channel-scope of the tool.
	// An empty list means the tool is visible in all channels.
	Channels []string `json:"channels,omitempty"`

	// ProviderID is empty for internal (built-in) tools.
	ProviderID string `json:"provider_id,omitempty"`

	InputSchema json.RawMessage `json:"input_schema,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterToolInput is the input structure for registering a tool with mcpbridge.
type RegisterToolInput struct {
	// ID is optional; a unique identifier is assigned when absent.
	ID string `json:"id,omitempty"`

	// Name (mandatory) is the human-readable tool name.
	Name string `json:"name"`

	// Description (mandatory) is shown to the model and to humans.
	Description string `json:"description"`

	// Version defaults to "1.0.0".
	Version string `json:"version,omitempty"`

	Permissions []string `json:"permissions,omitempty"`

	// Channels defaults to empty, meaning visible in all channels.
	Channels []string `json:"channels,omitempty"`

	ProviderID string `json:"provider_id,omitempty"`

	// InputSchema is a JSON-Schema-like description of the tool's parameters.
	InputSchema json.RawMessage `json:"input_schema,omitempty"`

	// TimeoutSeconds is the per-call timeout for this tool. 0 means the
	// engine default (30 seconds).
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty"`
}

// UpdateToolInput describes a partial update of a tool record.
// Nil fields are left unchanged. The tool identifier cannot be changed.
type UpdateToolInput struct {
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Version        *string   `json:"version,omitempty"`
	Enabled        *bool     `json:"enabled,omitempty"`
	Permissions    *[]string `json:"permissions,omitempty"`
	Channels       *[]string `json:"channels,omitempty"`
	TimeoutSeconds *int      `json:"timeout_seconds,omitempty"`
}

// DiscoveredTool is the wire-level tool description returned by a provider
// during discovery. It is consumed to produce a Tool record and then discarded.
type DiscoveredTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// InvokeToolInput is the input structure for invoking a tool directly via the API.
type InvokeToolInput struct {
	ID    string         `json:"id"`
	Input map[string]any `json:"input"`
}

// InvokeToolResult represents the result of a tool invocation,
// designed to be passed down to the end user.
type InvokeToolResult struct {
	ToolID     string `json:"tool_id"`
	Success    bool   `json:"success"`
	Output     any    `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}
