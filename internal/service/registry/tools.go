// Package registry implements the in-memory tool and provider registries.
// The registries are the authoritative owners of all tool and provider
// state in a mcpbridge process; every mutation goes through their methods
// so that concurrent operations on the same identifier never interleave.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/pkg/types"
)

const defaultToolVersion = "1.0.0"

// ToolRegistry maps tool identifiers to tool records.
// Listing order is stable registry insertion order.
type ToolRegistry struct {
	mu     sync.RWMutex
	tools  map[string]*model.Tool
	order  []string
	logger *zap.Logger
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry(logger *zap.Logger) *ToolRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolRegistry{
		tools:  make(map[string]*model.Tool),
		logger: logger,
	}
}

// Register creates a new tool record from the input.
// Identifier is assigned when absent, version defaults to "1.0.0",
// enabled defaults to true and channel-scope defaults to empty (all channels).
func (r *ToolRegistry) Register(input *types.RegisterToolInput) (*model.Tool, error) {
	if input.Name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if input.Description == "" {
		return nil, &model.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	t := newToolFromInput(input)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.ID]; exists {
		return nil, &model.ValidationError{Field: "id", Reason: "identifier is already registered"}
	}

	r.tools[t.ID] = t
	r.order = append(r.order, t.ID)

	r.logger.Info("registered tool",
		zap.String("tool_id", t.ID),
		zap.String("name", t.Name),
		zap.String("provider_id", t.ProviderID),
	)
	return t.Clone(), nil
}

// Update merges the partial changes over the existing record.
// The identifier cannot be changed.
func (r *ToolRegistry) Update(id string, input *types.UpdateToolInput) (*model.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tools[id]
	if !ok {
		return nil, &model.NotFoundError{Kind: "tool", ID: id}
	}

	// validate every field before touching the record, so a rejected
	// update leaves it untouched
	if input.Name != nil && *input.Name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if input.Description != nil && *input.Description == "" {
		return nil, &model.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Version != nil {
		t.Version = *input.Version
	}
	if input.Enabled != nil {
		t.Enabled = *input.Enabled
	}
	if input.Permissions != nil {
		t.Permissions = append([]string(nil), *input.Permissions...)
	}
	if input.Channels != nil {
		t.Channels = dedupe(*input.Channels)
	}
	if input.TimeoutSeconds != nil {
		t.TimeoutSeconds = *input.TimeoutSeconds
	}
	t.UpdatedAt = time.Now()

	return t.Clone(), nil
}

// SetEnabled flips the enablement flag of a tool.
func (r *ToolRegistry) SetEnabled(id string, enabled bool) (*model.Tool, error) {
	return r.Update(id, &types.UpdateToolInput{Enabled: &enabled})
}

// Remove deletes a tool record. It signals not-found for unknown identifiers.
func (r *ToolRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[id]; !ok {
		return &model.NotFoundError{Kind: "tool", ID: id}
	}
	r.deleteLocked(id)
	return nil
}

// RemoveByProvider deletes every tool owned by the given provider and
// returns the removed tool identifiers. Built-ins are never affected.
func (r *ToolRegistry) RemoveByProvider(providerID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for _, id := range append([]string(nil), r.order...) {
		if r.tools[id].ProviderID == providerID {
			r.deleteLocked(id)
			removed = append(removed, id)
		}
	}
	return removed
}

// ReplaceProviderTools atomically replaces the tool set owned by a provider
// with the given definitions. Records whose identifier survives the swap keep
// their place in the listing order, so rediscovery with an unchanged tool
// list is idempotent.
func (r *ToolRegistry) ReplaceProviderTools(providerID string, inputs []*types.RegisterToolInput) []*model.Tool {
	r.mu.Lock()
	defer r.mu.Unlock()

	replacements := make([]*model.Tool, 0, len(inputs))
	incoming := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		t := newToolFromInput(input)
		replacements = append(replacements, t)
		incoming[t.ID] = true
	}

	// drop provider tools that are no longer advertised
	for _, id := range append([]string(nil), r.order...) {
		existing := r.tools[id]
		if existing.ProviderID != providerID {
			continue
		}
		if !incoming[id] {
			r.deleteLocked(id)
		}
	}

	result := make([]*model.Tool, 0, len(replacements))
	for _, t := range replacements {
		if existing, ok := r.tools[t.ID]; ok {
			// overwrite in place, preserving identity and creation time
			t.CreatedAt = existing.CreatedAt
			t.Enabled = existing.Enabled
			t.Channels = existing.Channels
			r.tools[t.ID] = t
		} else {
			r.tools[t.ID] = t
			r.order = append(r.order, t.ID)
		}
		result = append(result, t.Clone())
	}

	r.logger.Info("replaced provider tools",
		zap.String("provider_id", providerID),
		zap.Int("count", len(result)),
	)
	return result
}

// Get returns the tool with the given identifier.
func (r *ToolRegistry) Get(id string) (*model.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[id]
	if !ok {
		return nil, &model.NotFoundError{Kind: "tool", ID: id}
	}
	return t.Clone(), nil
}

// ListAll returns every tool record in insertion order.
func (r *ToolRegistry) ListAll() []*model.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Tool, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tools[id].Clone())
	}
	return out
}

// ListForChannel returns the enabled tools whose channel-scope is empty or
// contains the given channel, in insertion order. Disabled tools are never
// returned regardless of scope.
func (r *ToolRegistry) ListForChannel(channelID string) []*model.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Tool
	for _, id := range r.order {
		t := r.tools[id]
		if t.Enabled && t.VisibleInChannel(channelID) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func (r *ToolRegistry) deleteLocked(id string) {
	delete(r.tools, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func newToolFromInput(input *types.RegisterToolInput) *model.Tool {
	now := time.Now()
	t := &model.Tool{
		ID:             newToolID(input),
		Name:           input.Name,
		Version:        input.Version,
		Description:    input.Description,
		Enabled:        true,
		Permissions:    append([]string(nil), input.Permissions...),
		Channels:       dedupe(input.Channels),
		ProviderID:     input.ProviderID,
		InputSchema:    input.InputSchema,
		TimeoutSeconds: input.TimeoutSeconds,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.Version == "" {
		t.Version = defaultToolVersion
	}
	if input.Enabled != nil {
		t.Enabled = *input.Enabled
	}
	return t
}

func newToolID(input *types.RegisterToolInput) string {
	if input.ID != "" {
		return input.ID
	}
	return uuid.NewString()
}

// dedupe normalizes a channel-scope list into a set with stable order.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
