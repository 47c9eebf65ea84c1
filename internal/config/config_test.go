package config

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	fs := afero.NewMemMapFs()

	c, err := Load(fs, "/etc/mcpbridge/config.yaml")
	require.NoError(t, err)
	assert.Empty(t, c.Tools)
	assert.False(t, c.DisableBundledTools)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	c, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestLoadParsesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
keywords:
  git: [git, commit, repo]
tools:
  - id: git
    name: git
    description: Inspect the local repository
    channels: [C-dev]
    timeout_seconds: 10
    input_schema:
      type: object
      properties:
        input:
          type: string
providers:
  - name: search-farm
    endpoint: http://search.internal:9000
    credential: tok-123
workspace_root: /srv/workspace
`
	require.NoError(t, afero.WriteFile(fs, "/config.yaml", []byte(content), 0o644))

	c, err := Load(fs, "/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"git", "commit", "repo"}, c.Keywords["git"])
	assert.Equal(t, "/srv/workspace", c.WorkspaceRoot)

	require.Len(t, c.Tools, 1)
	assert.Equal(t, []string{"C-dev"}, c.Tools[0].Channels)
	assert.Equal(t, 10, c.Tools[0].TimeoutSeconds)

	raw, err := c.Tools[0].SchemaJSON()
	require.NoError(t, err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema["type"])

	require.Len(t, c.Providers, 1)
	assert.Equal(t, "http://search.internal:9000", c.Providers[0].Endpoint)
}

func TestLoadRejectsIncompleteSeeds(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config.yaml", []byte(`
tools:
  - name: nameless
`), 0o644))

	_, err := Load(fs, "/config.yaml")
	require.ErrorContains(t, err, "description")
}

func TestBundledTools(t *testing.T) {
	seeds := BundledTools()
	require.Len(t, seeds, 2)

	names := []string{seeds[0].Name, seeds[1].Name}
	assert.Contains(t, names, "file-system")
	assert.Contains(t, names, "web-search")

	for _, seed := range seeds {
		raw, err := seed.SchemaJSON()
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
	}
}
