package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

func TestRegisterAndInvokeTool(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v0/tools", func(w http.ResponseWriter, r *http.Request) {
		var input types.RegisterToolInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "echo", input.Name)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(types.Tool{
			ID: "echo-1", Name: input.Name, Version: "1.0.0", Enabled: true,
		})
	})
	mux.HandleFunc("POST /api/v0/tools/invoke", func(w http.ResponseWriter, r *http.Request) {
		var input types.InvokeToolInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "echo-1", input.ID)

		_ = json.NewEncoder(w).Encode(types.InvokeToolResult{
			ToolID: input.ID, Success: true, Output: input.Input,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	tool, err := c.RegisterTool(&types.RegisterToolInput{Name: "echo", Description: "Echo"})
	require.NoError(t, err)
	assert.Equal(t, "echo-1", tool.ID)

	result, err := c.InvokeTool(&types.InvokeToolInput{
		ID:    "echo-1",
		Input: map[string]any{"text": "hi"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestErrorResponsesSurfaceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "tool nope not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	_, err := c.GetTool("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool nope not found")
	assert.Contains(t, err.Error(), "404")
}

func TestListChannelTools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/channels/C1/tools", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]types.Tool{{ID: "git", Name: "git"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	tools, err := c.ListChannelTools("C1")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "git", tools[0].ID)
}
