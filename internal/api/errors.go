package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcpbridge/mcpbridge/internal/model"
)

// writeError maps a failure from the registry core onto an HTTP status.
func writeError(c *gin.Context, err error) {
	var (
		nferr *model.NotFoundError
		verr  *model.ValidationError
		derr  *model.DisabledError
		cerr  *model.ConnectionError
		uerr  *model.UnsupportedOperationError
	)
	switch {
	case errors.As(err, &nferr):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &derr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &uerr):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
