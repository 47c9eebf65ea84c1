package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/internal/service/executor"
	"github.com/mcpbridge/mcpbridge/internal/service/registry"
	"github.com/mcpbridge/mcpbridge/pkg/types"
)

type stubDiscoverer struct {
	tools []types.DiscoveredTool
}

func (d *stubDiscoverer) Probe(context.Context, *model.Provider) error { return nil }
func (d *stubDiscoverer) ListTools(context.Context, *model.Provider) ([]types.DiscoveredTool, error) {
	return d.tools, nil
}

func newTestServer(t *testing.T, disc registry.Discoverer) *Server {
	t.Helper()
	if disc == nil {
		disc = &stubDiscoverer{}
	}
	tools := registry.NewToolRegistry(nil)
	providers := registry.NewProviderRegistry(&registry.ProviderRegistryConfig{
		Tools:      tools,
		Discoverer: disc,
	})
	engine := executor.NewEngine(&executor.Config{Tools: tools, Providers: providers})
	engine.RegisterBuiltin("echo", func(_ context.Context, args map[string]any) (any, error) {
		return map[string]any{"echoed": args["text"]}, nil
	})

	s, err := NewServer(&ServerOptions{
		Port:      "0",
		Tools:     tools,
		Providers: providers,
		Engine:    engine,
	})
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthAndMetadata(t *testing.T) {
	s := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/metadata", "")
	require.Equal(t, http.StatusOK, w.Code)
	var meta types.ServerMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.NotEmpty(t, meta.Version)
}

func TestToolLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools", `{
		"id": "echo-1",
		"name": "echo",
		"description": "Echo the input back",
		"input_schema": {"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/tools/echo-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tool types.Tool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tool))
	assert.True(t, tool.Enabled)
	assert.Equal(t, "1.0.0", tool.Version)

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", `{
		"id": "echo-1", "input": {"text": "hi"}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result types.InvokeToolResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/echo-1/disable", "")
	require.Equal(t, http.StatusOK, w.Code)

	// disabled tools reject invocation
	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", `{
		"id": "echo-1", "input": {"text": "hi"}
	}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodDelete, V0ApiPathPrefix+"/tools/echo-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/tools/echo-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvokeValidationFailure(t *testing.T) {
	s := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools", `{
		"id": "echo-1",
		"name": "echo",
		"description": "Echo the input back",
		"input_schema": {"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", `{
		"id": "echo-1", "input": {}
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProviderLifecycleWithDiscovery(t *testing.T) {
	disc := &stubDiscoverer{tools: []types.DiscoveredTool{
		{Name: "web-search", Description: "Search the web"},
	}}
	s := newTestServer(t, disc)

	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/providers", `{
		"name": "search farm",
		"endpoint": "http://search.internal:9000"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var p types.Provider
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, types.StatusConnected, p.Status)
	require.NotNil(t, p.LastDiscovery)

	// discovery registered the provider's tool under the canonical id
	toolID := registry.ProviderToolID(p.ID, "web-search")
	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/tools/"+toolID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/channels/C1/tools", "")
	require.Equal(t, http.StatusOK, w.Code)
	var visible []types.Tool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &visible))
	require.Len(t, visible, 1)
	assert.Equal(t, toolID, visible[0].ID)

	// removing the provider cascades to its tools
	w = doJSON(t, s, http.MethodDelete, V0ApiPathPrefix+"/providers/"+p.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/tools/"+toolID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterProviderRejectsBadEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/providers", `{
		"name": "broken", "endpoint": "not a url"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsageStatsWithoutAudit(t *testing.T) {
	s := newTestServer(t, nil)

	w := doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats types.UsageStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Zero(t, stats.ToolCount)
	assert.Zero(t, stats.ErrorRate)
}
