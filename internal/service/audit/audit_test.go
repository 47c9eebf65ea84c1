package audit

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mcpbridge/mcpbridge/internal/migrations"
	"github.com/mcpbridge/mcpbridge/internal/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Migrate(db))
	return NewService(db, nil)
}

func TestRecordTurnAndCounters(t *testing.T) {
	s := newTestService(t)

	records := []model.ExecutionRecord{
		{
			ToolID:   "git",
			Input:    map[string]any{"input": "show the log"},
			Output:   map[string]any{"ok": true},
			Success:  true,
			Duration: 120 * time.Millisecond,
		},
		{
			ToolID:   "web-search",
			Input:    map[string]any{"query": "weather"},
			Success:  false,
			Error:    "index unavailable",
			Duration: 30 * time.Millisecond,
		},
	}
	require.NoError(t, s.RecordTurn("C1", "U1", records))
	require.NoError(t, s.RecordTurn("C2", "U2", nil))

	c, err := s.Counters()
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.MessageCount)
	assert.Equal(t, int64(2), c.ChannelCount)
	assert.Equal(t, int64(2), c.ToolCallCount)
	assert.Equal(t, int64(1), c.ToolCallFails)
}

func TestCallsForTurn(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.RecordTurn("C1", "U1", []model.ExecutionRecord{
		{ToolID: "git", Success: true, Duration: 10 * time.Millisecond},
	}))

	turns, err := s.RecentTurns(10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "C1", turns[0].ChannelID)
	assert.Equal(t, 1, turns[0].ToolCount)

	calls, err := s.CallsForTurn(turns[0].ID)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "git", calls[0].ToolID)
	assert.True(t, calls[0].Success)
	assert.Equal(t, int64(10), calls[0].DurationMs)
}
