// Package discovery implements the request/response protocol client used to
// probe providers, list their tools and invoke them.
//
// Only the http connection type is functional. The websocket and stdio
// connection types are declared in the data model but yield an
// unsupported-operation failure here, at call time, rather than silently
// dead code paths.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/pkg/types"
)

const (
	// ProbeTimeout bounds the reachability probe.
	ProbeTimeout = 5 * time.Second

	// DefaultCallTimeout bounds discovery and tool-call round-trips when the
	// tool declares no timeout of its own.
	DefaultCallTimeout = 30 * time.Second
)

// Client performs wire exchanges with providers over HTTP.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a protocol client.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		// per-request deadlines come from contexts; the client itself
		// carries no global timeout
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Probe checks reachability of the provider's endpoint with a bounded
// timeout. Any HTTP response, error statuses included, proves reachability;
// only transport failures fail the probe.
func (c *Client) Probe(ctx context.Context, p *model.Provider) error {
	if err := c.requireHTTP(p, "probe"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint, nil)
	if err != nil {
		return &model.ConnectionError{ProviderID: p.ID, Err: err}
	}
	if p.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+p.Credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.ConnectionError{
			ProviderID: p.ID,
			Timeout:    errors.Is(err, context.DeadlineExceeded),
			Err:        err,
		}
	}
	defer resp.Body.Close()

	return nil
}

// ListTools performs one tools/list round-trip against the provider.
func (c *Client) ListTools(ctx context.Context, p *model.Provider) ([]types.DiscoveredTool, error) {
	raw, wireErr, err := c.roundTrip(ctx, p, methodListTools, map[string]any{}, DefaultCallTimeout)
	if err != nil {
		return nil, err
	}
	if wireErr != nil {
		return nil, &model.ConnectionError{
			ProviderID: p.ID,
			Err:        fmt.Errorf("provider replied with error %d: %s", wireErr.Code, wireErr.Message),
		}
	}

	var result listToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &model.ConnectionError{
			ProviderID: p.ID,
			Err:        fmt.Errorf("malformed tools/list result: %w", err),
		}
	}

	c.logger.Debug("listed provider tools",
		zap.String("provider_id", p.ID),
		zap.Int("count", len(result.Tools)),
	)
	return result.Tools, nil
}

// CallTool sends a tools/call request for the named tool and returns the
// provider's result payload unchanged. A timeout, transport failure or
// protocol-level error reply all surface as an execution failure, carrying
// the provider's error message when one is available.
func (c *Client) CallTool(
	ctx context.Context,
	p *model.Provider,
	toolName string,
	args map[string]any,
	timeout time.Duration,
) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	params := callToolParams{Name: toolName, Arguments: args}

	raw, wireErr, err := c.roundTrip(ctx, p, methodCallTool, params, timeout)
	if err != nil {
		var uerr *model.UnsupportedOperationError
		if errors.As(err, &uerr) {
			return nil, err
		}
		var cerr *model.ConnectionError
		timedOut := errors.As(err, &cerr) && cerr.Timeout
		return nil, &model.ExecutionError{Timeout: timedOut, Err: err}
	}
	if wireErr != nil {
		return nil, &model.ExecutionError{Message: wireErr.Message}
	}
	return raw, nil
}

// roundTrip sends one envelope and decodes the reply.
// It returns the result payload or the protocol-level error, and reserves
// the error return for transport and framing failures.
func (c *Client) roundTrip(
	ctx context.Context,
	p *model.Provider,
	method string,
	params any,
	timeout time.Duration,
) (json.RawMessage, *wireError, error) {
	if err := c.requireHTTP(p, method); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	envelope := request{
		ProtocolVersion: ProtocolVersion,
		ID:              uuid.NewString(),
		Method:          method,
		Params:          params,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, nil, &model.ConnectionError{ProviderID: p.ID, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, &model.ConnectionError{ProviderID: p.ID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if p.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+p.Credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &model.ConnectionError{
			ProviderID: p.ID,
			Timeout:    errors.Is(err, context.DeadlineExceeded),
			Err:        err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &model.ConnectionError{
			ProviderID: p.ID,
			Err:        fmt.Errorf("provider returned HTTP %d for %s", resp.StatusCode, method),
		}
	}

	var reply response
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, nil, &model.ConnectionError{
			ProviderID: p.ID,
			Err:        fmt.Errorf("malformed reply to %s: %w", method, err),
		}
	}
	if reply.Error != nil {
		return nil, reply.Error, nil
	}
	return reply.Result, nil, nil
}

// requireHTTP rejects operations on connection types other than
// request/response HTTP with a failure distinct from a network failure.
func (c *Client) requireHTTP(p *model.Provider, op string) error {
	if p.Connection != types.ConnectionHTTP {
		return &model.UnsupportedOperationError{Connection: p.Connection, Op: op}
	}
	return nil
}
