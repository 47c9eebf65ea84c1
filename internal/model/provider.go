// Package model defines the in-memory entity records and persistent audit
// models used across the mcpbridge registry.
package model

import (
	"time"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

// Provider represents a remote source of tools (an MCP server).
// The registry is the authoritative owner of these records; all mutation
// goes through registry methods.
type Provider struct {
	// ID is immutable after creation.
	ID string

	Name        string
	Description string

	// Endpoint is the address of the provider. Required.
	Endpoint string

	// Credential is an optional bearer token sent with every request
	// to the provider.
	Credential string

	Connection types.ConnectionType
	Enabled    bool

	// Status transitions are driven only by connect/discover attempts.
	Status        types.ConnectionStatus
	LastDiscovery *time.Time
	LastError     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the provider record.
// Registries hand out clones so callers cannot mutate shared state.
func (p *Provider) Clone() *Provider {
	cp := *p
	if p.LastDiscovery != nil {
		t := *p.LastDiscovery
		cp.LastDiscovery = &t
	}
	return &cp
}

// ToAPI converts the record to its API representation.
func (p *Provider) ToAPI() *types.Provider {
	return &types.Provider{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Endpoint:      p.Endpoint,
		Connection:    p.Connection,
		Enabled:       p.Enabled,
		Status:        p.Status,
		LastDiscovery: p.LastDiscovery,
		LastError:     p.LastError,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
