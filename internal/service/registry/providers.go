package registry

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/pkg/types"
)

// providerToolNameSep combines a provider id and a tool name into the
// identifier that uniquely identifies a discovered tool across mcpbridge.
const providerToolNameSep = "__"

// refreshConcurrency bounds the provider fan-out of RefreshAll.
const refreshConcurrency = 8

// Discoverer performs the wire exchanges with a provider.
// It is implemented by the discovery protocol client and faked in tests.
type Discoverer interface {
	// Probe checks reachability of the provider endpoint.
	Probe(ctx context.Context, p *model.Provider) error
	// ListTools performs one tools/list round-trip.
	ListTools(ctx context.Context, p *model.Provider) ([]types.DiscoveredTool, error)
}

// ProviderRegistryConfig holds the collaborators of a ProviderRegistry.
type ProviderRegistryConfig struct {
	Tools      *ToolRegistry
	Discoverer Discoverer
	Logger     *zap.Logger
}

// ProviderRegistry maps provider identifiers to provider records and drives
// connect/discover attempts against them. Discovery for the same provider is
// serialized; discovery for distinct providers proceeds independently.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]*model.Provider
	order     []string
	ops       map[string]*sync.Mutex

	tools  *ToolRegistry
	disc   Discoverer
	logger *zap.Logger
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry(c *ProviderRegistryConfig) *ProviderRegistry {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderRegistry{
		providers: make(map[string]*model.Provider),
		ops:       make(map[string]*sync.Mutex),
		tools:     c.Tools,
		disc:      c.Discoverer,
		logger:    logger,
	}
}

// ProviderToolID returns the registry-wide identifier of a tool discovered
// from a provider, e.g. "a1b2__web-search".
func ProviderToolID(providerID, toolName string) string {
	return providerID + providerToolNameSep + toolName
}

// Add creates a provider record and immediately attempts connect + discovery.
// Creation is best-effort: a failed connect or discovery still leaves the
// record in place (in error status) so the admin can inspect and retry.
func (r *ProviderRegistry) Add(ctx context.Context, input *types.RegisterProviderInput) (*model.Provider, error) {
	connection, err := types.ValidateConnectionType(input.Connection)
	if err != nil {
		return nil, &model.ValidationError{Field: "connection", Reason: err.Error()}
	}
	if input.Name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := validateEndpoint(input.Endpoint, connection); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Provider{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Endpoint:    input.Endpoint,
		Credential:  input.Credential,
		Connection:  connection,
		Enabled:     true,
		Status:      types.StatusDisconnected,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Enabled != nil {
		p.Enabled = *input.Enabled
	}

	r.mu.Lock()
	r.providers[p.ID] = p
	r.order = append(r.order, p.ID)
	r.mu.Unlock()

	r.logger.Info("added provider",
		zap.String("provider_id", p.ID),
		zap.String("name", p.Name),
		zap.String("endpoint", p.Endpoint),
	)

	if p.Enabled {
		if _, err := r.Discover(ctx, p.ID); err != nil {
			r.logger.Warn("initial discovery failed for new provider",
				zap.String("provider_id", p.ID),
				zap.Error(err),
			)
		}
	}
	return r.Get(p.ID)
}

// Update applies partial changes to a provider record. If endpoint,
// credential or connection type changed, it re-runs connect + discovery
// exactly like Add does.
func (r *ProviderRegistry) Update(ctx context.Context, id string, input *types.UpdateProviderInput) (*model.Provider, error) {
	op, err := r.opMutex(id)
	if err != nil {
		return nil, err
	}
	op.Lock()
	reconnect, err := r.applyUpdate(id, input)
	op.Unlock()
	if err != nil {
		return nil, err
	}

	if reconnect {
		if _, err := r.Discover(ctx, id); err != nil {
			r.logger.Warn("rediscovery after connection change failed",
				zap.String("provider_id", id),
				zap.Error(err),
			)
		}
	}
	return r.Get(id)
}

func (r *ProviderRegistry) applyUpdate(id string, input *types.UpdateProviderInput) (reconnect bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return false, &model.NotFoundError{Kind: "provider", ID: id}
	}

	connection := p.Connection
	if input.Connection != nil {
		connection, err = types.ValidateConnectionType(*input.Connection)
		if err != nil {
			return false, &model.ValidationError{Field: "connection", Reason: err.Error()}
		}
	}
	endpoint := p.Endpoint
	if input.Endpoint != nil {
		endpoint = *input.Endpoint
	}
	if err := validateEndpoint(endpoint, connection); err != nil {
		return false, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return false, &model.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Enabled != nil {
		p.Enabled = *input.Enabled
	}

	reconnect = endpoint != p.Endpoint || connection != p.Connection ||
		(input.Credential != nil && *input.Credential != p.Credential)

	p.Endpoint = endpoint
	p.Connection = connection
	if input.Credential != nil {
		p.Credential = *input.Credential
	}
	p.UpdatedAt = time.Now()

	return reconnect && p.Enabled, nil
}

// Remove deletes a provider record and cascades deletion of every tool it
// owns. It signals not-found for unknown identifiers.
func (r *ProviderRegistry) Remove(id string) error {
	op, err := r.opMutex(id)
	if err != nil {
		return err
	}
	op.Lock()
	defer op.Unlock()

	r.mu.Lock()
	if _, ok := r.providers[id]; !ok {
		r.mu.Unlock()
		return &model.NotFoundError{Kind: "provider", ID: id}
	}
	delete(r.providers, id)
	delete(r.ops, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	removed := r.tools.RemoveByProvider(id)
	r.logger.Info("removed provider",
		zap.String("provider_id", id),
		zap.Int("tools_removed", len(removed)),
	)
	return nil
}

// Get returns the provider with the given identifier.
func (r *ProviderRegistry) Get(id string) (*model.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, &model.NotFoundError{Kind: "provider", ID: id}
	}
	return p.Clone(), nil
}

// List returns every provider record in insertion order.
func (r *ProviderRegistry) List() []*model.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id].Clone())
	}
	return out
}

// Discover performs one probe + tools/list round-trip against the provider,
// updating its status and lastDiscovery timestamp on both the success and
// failure paths. On success the discovered definitions replace the
// provider's prior tool records, so rediscovery is idempotent.
func (r *ProviderRegistry) Discover(ctx context.Context, id string) ([]types.DiscoveredTool, error) {
	op, err := r.opMutex(id)
	if err != nil {
		return nil, err
	}
	op.Lock()
	defer op.Unlock()

	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !p.Enabled {
		return nil, &model.DisabledError{Kind: "provider", ID: id}
	}

	// network I/O happens outside the registry lock
	if err := r.disc.Probe(ctx, p); err != nil {
		r.recordOutcome(id, types.StatusError, err)
		return nil, err
	}

	defs, err := r.disc.ListTools(ctx, p)
	if err != nil {
		r.recordOutcome(id, types.StatusError, err)
		return nil, err
	}

	inputs := make([]*types.RegisterToolInput, 0, len(defs))
	for _, def := range defs {
		description := def.Description
		if description == "" {
			description = def.Name
		}
		inputs = append(inputs, &types.RegisterToolInput{
			ID:          ProviderToolID(id, def.Name),
			Name:        def.Name,
			Description: description,
			ProviderID:  id,
			InputSchema: def.InputSchema,
		})
	}
	r.tools.ReplaceProviderTools(id, inputs)

	r.recordOutcome(id, types.StatusConnected, nil)
	r.logger.Info("discovery complete",
		zap.String("provider_id", id),
		zap.Int("tools", len(defs)),
	)
	return defs, nil
}

// RefreshAll runs a best-effort, concurrent discovery over all enabled
// providers. A single provider's failure does not abort the others; the
// call returns once every attempt has resolved.
func (r *ProviderRegistry) RefreshAll(ctx context.Context) {
	var ids []string
	for _, p := range r.List() {
		if p.Enabled {
			ids = append(ids, p.ID)
		}
	}

	var g errgroup.Group
	g.SetLimit(refreshConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := r.Discover(ctx, id); err != nil {
				r.logger.Warn("provider refresh failed",
					zap.String("provider_id", id),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Count returns the number of registered providers.
func (r *ProviderRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// CountByStatus returns the number of providers per connection status.
func (r *ProviderRegistry) CountByStatus() map[types.ConnectionStatus]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.ConnectionStatus]int64)
	for _, p := range r.providers {
		out[p.Status]++
	}
	return out
}

// recordOutcome writes the result of a connect/discover attempt back to the
// provider record. Status is never touched by any other operation.
func (r *ProviderRegistry) recordOutcome(id string, status types.ConnectionStatus, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		// provider was removed while discovery was in flight
		return
	}
	now := time.Now()
	p.Status = status
	p.LastDiscovery = &now
	p.UpdatedAt = now
	if cause != nil {
		p.LastError = cause.Error()
	} else {
		p.LastError = ""
	}
}

func (r *ProviderRegistry) opMutex(id string) (*sync.Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return nil, &model.NotFoundError{Kind: "provider", ID: id}
	}
	m, ok := r.ops[id]
	if !ok {
		m = &sync.Mutex{}
		r.ops[id] = m
	}
	return m, nil
}

func validateEndpoint(endpoint string, connection types.ConnectionType) error {
	if endpoint == "" {
		return &model.ValidationError{Field: "endpoint", Reason: "must not be empty"}
	}
	if connection == types.ConnectionStdio {
		// stdio endpoints are commands, not URLs
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &model.ValidationError{
			Field:  "endpoint",
			Reason: fmt.Sprintf("%q is not a valid address", endpoint),
		}
	}
	if connection == types.ConnectionHTTP && !strings.HasPrefix(u.Scheme, "http") {
		return &model.ValidationError{
			Field:  "endpoint",
			Reason: fmt.Sprintf("http connection requires an http(s) URL, got scheme %q", u.Scheme),
		}
	}
	return nil
}
