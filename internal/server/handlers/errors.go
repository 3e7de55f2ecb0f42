package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/repository/supabase"
	"github.com/mamadbah2/erp-avicola/internal/service/flocks"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
	"github.com/mamadbah2/erp-avicola/internal/service/shell"
	client "github.com/mamadbah2/erp-avicola/pkg/clients/supabase"
)

// writeError maps service errors to a JSON error response.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErr *flocks.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": validationErr.Fields})
		return
	}

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	case errors.Is(err, session.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	case errors.Is(err, shell.ErrModuleDisabled), errors.Is(err, supabase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		status := remoteStatus(apiErr.Status)
		logger.Warn("remote data service rejected request", zap.Int("remote_status", apiErr.Status), zap.Error(err))
		c.JSON(status, gin.H{"error": apiErr.Error()})
		return
	}

	logger.Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// remoteStatus passes client errors of the remote service through and turns
// everything else into a bad gateway.
func remoteStatus(status int) int {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusNotFound:
		return status
	case http.StatusUnauthorized, http.StatusForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
