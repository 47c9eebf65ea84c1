package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

func (s *Server) registerProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.RegisterProviderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := s.providers.Add(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}

		// creation succeeds even when the initial discovery failed; the
		// record's status field tells the two cases apart
		c.JSON(http.StatusCreated, p.ToAPI())
	}
}

func (s *Server) listProvidersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records := s.providers.List()
		providers := make([]*types.Provider, len(records))
		for i, record := range records {
			providers[i] = record.ToAPI()
		}
		c.JSON(http.StatusOK, providers)
	}
}

func (s *Server) getProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.providers.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p.ToAPI())
	}
}

func (s *Server) updateProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.UpdateProviderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := s.providers.Update(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p.ToAPI())
	}
}

func (s *Server) deregisterProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.providers.Remove(c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) discoverProviderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		discovered, err := s.providers.Discover(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"provider_id": id,
			"tools":       discovered,
		})
	}
}
