package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

// usageStatsHandler merges registry entity counts with the audit store's
// historical counters.
func (s *Server) usageStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := &types.UsageStats{
			ToolCount:         int64(s.tools.Count()),
			ProviderCount:     int64(s.providers.Count()),
			ProvidersByStatus: make(map[string]int64),
		}
		for status, n := range s.providers.CountByStatus() {
			stats.ProvidersByStatus[string(status)] = n
		}

		if s.audit != nil {
			counters, err := s.audit.Counters()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			stats.MessageCount = counters.MessageCount
			stats.ChannelCount = counters.ChannelCount
			stats.ToolCallCount = counters.ToolCallCount
			stats.ToolCallFails = counters.ToolCallFails
			if counters.ToolCallCount > 0 {
				stats.ErrorRate = float64(counters.ToolCallFails) / float64(counters.ToolCallCount)
			}
		}

		c.JSON(http.StatusOK, stats)
	}
}
