package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Names of the tools the engine ships with. They are registered like any
// other tool but have no provider and dispatch to in-process handlers.
const (
	BuiltinFileSystem = "file-system"
	BuiltinWebSearch  = "web-search"
)

type fileSystemArgs struct {
	Action string `mapstructure:"action"`
	Path   string `mapstructure:"path"`
	// Content is only consulted by the write action.
	Content string `mapstructure:"content"`
}

// NewFileSystemHandler returns the handler backing the file-system tool.
// All paths are resolved under root; escapes via ".." are rejected.
func NewFileSystemHandler(root string) Handler {
	return func(_ context.Context, args map[string]any) (any, error) {
		var in fileSystemArgs
		if err := mapstructure.Decode(args, &in); err != nil {
			return nil, fmt.Errorf("failed to decode arguments: %w", err)
		}

		path, err := resolveUnder(root, in.Path)
		if err != nil {
			return nil, err
		}

		switch in.Action {
		case "read":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return map[string]any{"path": in.Path, "content": string(data)}, nil

		case "write":
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte(in.Content), 0o644); err != nil {
				return nil, err
			}
			return map[string]any{"path": in.Path, "written": len(in.Content)}, nil

		case "list":
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(entries))
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() {
					name += "/"
				}
				names = append(names, name)
			}
			sort.Strings(names)
			return map[string]any{"path": in.Path, "entries": names}, nil

		case "delete":
			if err := os.Remove(path); err != nil {
				return nil, err
			}
			return map[string]any{"path": in.Path, "deleted": true}, nil

		default:
			return nil, fmt.Errorf("unknown action %q, expected read, write, list or delete", in.Action)
		}
	}
}

func resolveUnder(root, rel string) (string, error) {
	if rel == "" {
		rel = "."
	}
	path := filepath.Join(root, filepath.Clean("/"+rel))
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", rel)
	}
	return path, nil
}

type webSearchArgs struct {
	Query string `mapstructure:"query"`
}

// HTTPSearcher answers queries by POSTing to a search backend that accepts
// {"query": ...} and replies {"results": [...]}.
type HTTPSearcher struct {
	Endpoint string
	Client   *http.Client
}

func (s *HTTPSearcher) Search(ctx context.Context, query string) ([]string, error) {
	if s.Endpoint == "" {
		return nil, fmt.Errorf("no search backend configured")
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Results []string `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed search reply: %w", err)
	}
	return payload.Results, nil
}

// Searcher answers web-search queries. Implementations decide how results
// are produced; the handler only shapes the request and response.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// NewWebSearchHandler returns the handler backing the web-search tool.
func NewWebSearchHandler(searcher Searcher) Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var in webSearchArgs
		if err := mapstructure.Decode(args, &in); err != nil {
			return nil, fmt.Errorf("failed to decode arguments: %w", err)
		}
		if strings.TrimSpace(in.Query) == "" {
			return nil, fmt.Errorf("query must not be empty")
		}

		results, err := searcher.Search(ctx, in.Query)
		if err != nil {
			return nil, err
		}
		return map[string]any{"query": in.Query, "results": results}, nil
	}
}
