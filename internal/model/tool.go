package model

import (
	"encoding/json"
	"time"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

// Tool represents a callable capability.
// Tools owned by a provider carry its ID; tools with an empty ProviderID
// are internal built-ins.
type Tool struct {
	// ID is immutable after creation.
	ID string

	Name        string
	Version     string
	Description string
	Enabled     bool

	// Permissions are advisory tags; the core does not enforce them.
	Permissions []string

	// Channels is the channel-scope set. Empty means visible in all channels.
	Channels []string

	ProviderID string

	// InputSchema is the JSON-Schema-like description of the tool's
	// parameters, translated into a validated signature at call time.
	InputSchema json.RawMessage

	// TimeoutSeconds is the per-call timeout. 0 means the engine default.
	TimeoutSeconds int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VisibleInChannel reports whether the tool's channel-scope admits the channel.
// An empty scope admits every channel.
func (t *Tool) VisibleInChannel(channelID string) bool {
	if len(t.Channels) == 0 {
		return true
	}
	for _, c := range t.Channels {
		if c == channelID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the tool record.
func (t *Tool) Clone() *Tool {
	cp := *t
	cp.Permissions = append([]string(nil), t.Permissions...)
	cp.Channels = append([]string(nil), t.Channels...)
	cp.InputSchema = append(json.RawMessage(nil), t.InputSchema...)
	return &cp
}

// ToAPI converts the record to its API representation.
func (t *Tool) ToAPI() *types.Tool {
	return &types.Tool{
		ID:          t.ID,
		Name:        t.Name,
		Version:     t.Version,
		Description: t.Description,
		Enabled:     t.Enabled,
		Permissions: t.Permissions,
		Channels:    t.Channels,
		ProviderID:  t.ProviderID,
		InputSchema: t.InputSchema,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
