package types

// ServerMetadata represents the server metadata response.
type ServerMetadata struct {
	Version string `json:"version"`
}

// UsageStats aggregates registry entity counts with audit counters.
type UsageStats struct {
	ToolCount     int64 `json:"tool_count"`
	ProviderCount int64 `json:"provider_count"`

	// ProvidersByStatus maps a connection status to the number of providers in it.
	ProvidersByStatus map[string]int64 `json:"providers_by_status"`

	MessageCount  int64 `json:"message_count"`
	ChannelCount  int64 `json:"channel_count"`
	ToolCallCount int64 `json:"tool_call_count"`
	ToolCallFails int64 `json:"tool_call_fails"`

	// ErrorRate is the fraction of tool calls that failed, in [0, 1].
	ErrorRate float64 `json:"error_rate"`
}
