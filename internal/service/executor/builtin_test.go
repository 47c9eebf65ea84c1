package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemReadWriteListDelete(t *testing.T) {
	root := t.TempDir()
	handler := NewFileSystemHandler(root)
	ctx := context.Background()

	_, err := handler(ctx, map[string]any{
		"action": "write", "path": "notes/todo.txt", "content": "ship it",
	})
	require.NoError(t, err)

	out, err := handler(ctx, map[string]any{"action": "read", "path": "notes/todo.txt"})
	require.NoError(t, err)
	assert.Equal(t, "ship it", out.(map[string]any)["content"])

	out, err = handler(ctx, map[string]any{"action": "list", "path": "notes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"todo.txt"}, out.(map[string]any)["entries"])

	_, err = handler(ctx, map[string]any{"action": "delete", "path": "notes/todo.txt"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "notes", "todo.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileSystemUnknownAction(t *testing.T) {
	handler := NewFileSystemHandler(t.TempDir())

	_, err := handler(context.Background(), map[string]any{"action": "chmod", "path": "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chmod")
}

func TestFileSystemRejectsEscapingPath(t *testing.T) {
	handler := NewFileSystemHandler(t.TempDir())

	_, err := handler(context.Background(), map[string]any{
		"action": "read", "path": "../../etc/passwd",
	})

	// the "../.." is stripped, so the lookup stays inside the empty
	// workspace and fails with not-exist instead of reaching /etc/passwd
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

type fakeSearcher struct {
	query   string
	results []string
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]string, error) {
	f.query = query
	return f.results, f.err
}

func TestWebSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []string{"first hit", "second hit"}}
	handler := NewWebSearchHandler(searcher)

	out, err := handler(context.Background(), map[string]any{"query": "rain tomorrow"})

	require.NoError(t, err)
	assert.Equal(t, "rain tomorrow", searcher.query)
	assert.Equal(t, []string{"first hit", "second hit"}, out.(map[string]any)["results"])
}

func TestWebSearchEmptyQuery(t *testing.T) {
	handler := NewWebSearchHandler(&fakeSearcher{})

	_, err := handler(context.Background(), map[string]any{"query": "   "})

	require.Error(t, err)
}

func TestWebSearchBackendFailure(t *testing.T) {
	handler := NewWebSearchHandler(&fakeSearcher{err: errors.New("offline")})

	_, err := handler(context.Background(), map[string]any{"query": "anything"})

	require.ErrorContains(t, err, "offline")
}
