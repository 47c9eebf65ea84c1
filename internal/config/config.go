// Package config loads the mcpbridge configuration file.
//
// The file is optional. When absent, the built-in defaults apply: the stock
// keyword table and the two bundled tools.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ToolSeed declares a tool registered at startup.
type ToolSeed struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Channels       []string `yaml:"channels,omitempty"`
	TimeoutSeconds int      `yaml:"timeout_seconds,omitempty"`

	// InputSchema is the JSON-Schema-like parameter description, embedded
	// as YAML and re-encoded to JSON at load time.
	InputSchema map[string]any `yaml:"input_schema,omitempty"`
}

// SchemaJSON returns the seed's input schema as JSON.
func (t ToolSeed) SchemaJSON() (json.RawMessage, error) {
	if t.InputSchema == nil {
		return nil, nil
	}
	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema of tool %q: %w", t.Name, err)
	}
	return raw, nil
}

// ProviderSeed declares a provider registered at startup.
type ProviderSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Endpoint    string `yaml:"endpoint"`
	Credential  string `yaml:"credential,omitempty"`
	Connection  string `yaml:"connection,omitempty"`
}

// Config is the full mcpbridge configuration.
type Config struct {
	// Keywords maps a tool name to its relevance trigger words.
	// Entries here replace the default entry for the same tool name.
	Keywords map[string][]string `yaml:"keywords,omitempty"`

	// Tools are registered at startup in addition to the bundled tools.
	Tools []ToolSeed `yaml:"tools,omitempty"`

	// Providers are registered and discovered at startup.
	Providers []ProviderSeed `yaml:"providers,omitempty"`

	// DisableBundledTools drops the bundled file-system and web-search
	// tools from the startup registration.
	DisableBundledTools bool `yaml:"disable_bundled_tools,omitempty"`

	// WorkspaceRoot confines the bundled file-system tool.
	// Empty selects the process working directory.
	WorkspaceRoot string `yaml:"workspace_root,omitempty"`
}

// BundledTools returns the seeds of the tools mcpbridge ships with.
func BundledTools() []ToolSeed {
	return []ToolSeed{
		{
			ID:          "file-system",
			Name:        "file-system",
			Description: "Read, write, list and delete files in the workspace",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{
						"type": "string",
						"enum": []any{"read", "write", "list", "delete"},
					},
					"path":    map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
				"required": []any{"action"},
			},
		},
		{
			ID:          "web-search",
			Name:        "web-search",
			Description: "Search the web for a query",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string"},
				},
				"required": []any{"query"},
			},
		},
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{}
}

// Load reads the configuration file at path. An empty path or a missing
// file yields the default configuration.
func Load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check config file: %w", err)
	}
	if !exists {
		return Default(), nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	for i, seed := range c.Tools {
		if seed.Name == "" {
			return fmt.Errorf("tools[%d]: name must not be empty", i)
		}
		if seed.Description == "" {
			return fmt.Errorf("tools[%d] (%s): description must not be empty", i, seed.Name)
		}
	}
	for i, seed := range c.Providers {
		if seed.Name == "" {
			return fmt.Errorf("providers[%d]: name must not be empty", i)
		}
		if seed.Endpoint == "" {
			return fmt.Errorf("providers[%d] (%s): endpoint must not be empty", i, seed.Name)
		}
	}
	return nil
}
