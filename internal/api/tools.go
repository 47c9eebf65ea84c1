package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/pkg/types"
)

func (s *Server) registerToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.RegisterToolInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		t, err := s.tools.Register(&input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t.ToAPI())
	}
}

func (s *Server) listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records := s.tools.ListAll()
		tools := make([]*types.Tool, len(records))
		for i, record := range records {
			tools[i] = record.ToAPI()
		}
		c.JSON(http.StatusOK, tools)
	}
}

func (s *Server) getToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := s.tools.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, t.ToAPI())
	}
}

func (s *Server) updateToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.UpdateToolInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		t, err := s.tools.Update(c.Param("id"), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, t.ToAPI())
	}
}

func (s *Server) deregisterToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.tools.Remove(c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) setToolEnabledHandler(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := s.tools.SetEnabled(c.Param("id"), enabled)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, t.ToAPI())
	}
}

// invokeToolHandler runs a tool synchronously with an explicit payload.
// An execution failure is a valid outcome and is reported in the result
// body, not as an HTTP error; only resolution and validation failures map
// to error statuses.
func (s *Server) invokeToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.InvokeToolInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id must not be empty"})
			return
		}

		result := s.engine.Execute(c.Request.Context(), input.ID, input.Input)
		if result.Err != nil {
			var eerr *model.ExecutionError
			if !errors.As(result.Err, &eerr) {
				writeError(c, result.Err)
				return
			}
		}

		out := &types.InvokeToolResult{
			ToolID:     input.ID,
			Success:    result.Err == nil,
			Output:     result.Output,
			DurationMs: result.Duration.Milliseconds(),
		}
		if result.Err != nil {
			out.Error = result.Err.Error()
		}
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) listChannelToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records := s.tools.ListForChannel(c.Param("id"))
		tools := make([]*types.Tool, len(records))
		for i, record := range records {
			tools[i] = record.ToAPI()
		}
		c.JSON(http.StatusOK, tools)
	}
}
