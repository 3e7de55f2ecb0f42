package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// SessionState exposes the process session to the gates.
type SessionState interface {
	Snapshot() session.Snapshot
}

// ModuleState exposes the enabled module set to the gates.
type ModuleState interface {
	IsModuleEnabled(moduleKey string) bool
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// sessionGate rejects requests while the session is loading or anonymous.
func sessionGate(sessions SessionState) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := sessions.Snapshot()
		switch {
		case snap.Status == session.StatusLoading:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session is loading"})
		case !snap.Authenticated():
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		default:
			c.Next()
		}
	}
}

// moduleGate hides the routes of a disabled module.
func moduleGate(modules ModuleState, moduleKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !modules.IsModuleEnabled(moduleKey) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "module is not enabled"})
			return
		}
		c.Next()
	}
}

// requireRole rejects profiles below the minimum role.
func requireRole(sessions SessionState, minimum models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessions.Snapshot().Role().AtLeast(minimum) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
