package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/internal/service/executor"
	"github.com/mcpbridge/mcpbridge/internal/service/registry"
	"github.com/mcpbridge/mcpbridge/pkg/types"
)

const fileSystemSchema = `{
	"type": "object",
	"properties": {
		"action": {"type": "string", "enum": ["read", "write", "list", "delete"]},
		"path": {"type": "string"}
	},
	"required": ["action"]
}`

const webSearchSchema = `{
	"type": "object",
	"properties": {"query": {"type": "string"}},
	"required": ["query"]
}`

type fixture struct {
	orch  *Orchestrator
	tools *registry.ToolRegistry

	// calls records builtin invocations by tool name
	calls map[string][]map[string]any
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tools: registry.NewToolRegistry(nil),
		calls: make(map[string][]map[string]any),
	}
	engine := executor.NewEngine(&executor.Config{Tools: f.tools})

	register := func(id, name, schema string, channels ...string) {
		_, err := f.tools.Register(&types.RegisterToolInput{
			ID:          id,
			Name:        name,
			Description: name + " tool",
			Channels:    channels,
			InputSchema: json.RawMessage(schema),
		})
		require.NoError(t, err)
		engine.RegisterBuiltin(name, func(_ context.Context, args map[string]any) (any, error) {
			f.calls[name] = append(f.calls[name], args)
			return map[string]any{"ok": true}, nil
		})
	}

	register("file-system", "file-system", fileSystemSchema)
	register("git", "git", `{"type":"object","properties":{"input":{"type":"string"}}}`)
	register("web-search", "web-search", webSearchSchema)

	f.orch = New(&Config{Tools: f.tools, Engine: engine})
	return f
}

func TestHandleMessageSelectsOnlyGit(t *testing.T) {
	f := newFixture(t)

	result := f.orch.HandleMessage(context.Background(), Message{
		Text:      "please check the git log for this repo",
		ChannelID: "C1",
	})

	assert.Equal(t, []string{"git"}, result.SelectedToolIDs)
	require.Len(t, result.Records, 1)
	assert.True(t, result.Records[0].Success)
}

func TestHandleMessageNoRelevantTool(t *testing.T) {
	f := newFixture(t)

	result := f.orch.HandleMessage(context.Background(), Message{
		Text:      "good morning everyone",
		ChannelID: "C1",
	})

	assert.Empty(t, result.SelectedToolIDs)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.FailedCount())
}

func TestHandleMessageBuildsFileSystemInput(t *testing.T) {
	f := newFixture(t)

	result := f.orch.HandleMessage(context.Background(), Message{
		Text:      "read the file notes/todo.txt please",
		ChannelID: "C1",
	})

	require.Contains(t, result.SelectedToolIDs, "file-system")
	calls := f.calls["file-system"]
	require.Len(t, calls, 1)
	assert.Equal(t, "read", calls[0]["action"])
	assert.Equal(t, "notes/todo.txt", calls[0]["path"])
}

func TestHandleMessageStripsQueryPrefix(t *testing.T) {
	f := newFixture(t)

	f.orch.HandleMessage(context.Background(), Message{
		Text:      "search for the weather in oslo",
		ChannelID: "C1",
	})

	calls := f.calls["web-search"]
	require.Len(t, calls, 1)
	assert.Equal(t, "the weather in oslo", calls[0]["query"])
}

func TestHandleMessageRespectsChannelScope(t *testing.T) {
	f := newFixture(t)
	// restrict git to a different channel
	channels := []string{"C-private"}
	_, err := f.tools.Update("git", &types.UpdateToolInput{Channels: &channels})
	require.NoError(t, err)

	result := f.orch.HandleMessage(context.Background(), Message{
		Text:      "show the git diff",
		ChannelID: "C1",
	})

	assert.Empty(t, result.SelectedToolIDs)
}

func TestHandleMessageToolFailureDoesNotAbortTurn(t *testing.T) {
	f := newFixture(t)
	engine := executor.NewEngine(&executor.Config{Tools: f.tools})
	engine.RegisterBuiltin("git", func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("no repository here")
	})
	engine.RegisterBuiltin("file-system", func(_ context.Context, args map[string]any) (any, error) {
		return map[string]any{"ok": true}, nil
	})
	orch := New(&Config{Tools: f.tools, Engine: engine})

	result := orch.HandleMessage(context.Background(), Message{
		Text:      "read the file CHANGELOG.md and check the git history",
		ChannelID: "C1",
	})

	assert.Equal(t, []string{"file-system", "git"}, result.SelectedToolIDs)
	require.Len(t, result.Records, 2)
	assert.True(t, result.Records[0].Success)
	assert.False(t, result.Records[1].Success)
	assert.Contains(t, result.Records[1].Error, "no repository here")
	assert.Equal(t, 1, result.FailedCount())
}

func TestBindings(t *testing.T) {
	f := newFixture(t)

	bindings := f.orch.Bindings("C1")
	require.Len(t, bindings, 3)

	var search *ToolBinding
	for i := range bindings {
		if bindings[i].Name == "web-search" {
			search = &bindings[i]
		}
	}
	require.NotNil(t, search)

	result := search.Invoke(context.Background(), map[string]any{"query": "anything"})
	require.NoError(t, result.Err)
	assert.Len(t, f.calls["web-search"], 1)
}

func TestSelectorUnknownToolNeverSelected(t *testing.T) {
	sel := NewSelector(nil)
	tools := registry.NewToolRegistry(nil)
	tool, err := tools.Register(&types.RegisterToolInput{
		ID:          "mystery",
		Name:        "mystery",
		Description: "no keyword entry",
	})
	require.NoError(t, err)

	selected := sel.Select("mystery mystery mystery", []*model.Tool{tool})
	assert.Empty(t, selected)
}
