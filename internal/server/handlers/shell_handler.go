package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/service/shell"
)

// ShellService resolves navigation and views.
type ShellService interface {
	Navigation() shell.Navigation
	Resolve(key string) (shell.View, error)
}

// ShellHandler serves the navigation and the selected view descriptor.
type ShellHandler struct {
	shell  ShellService
	logger *zap.Logger
}

// NewShellHandler constructs the shell handler.
func NewShellHandler(svc ShellService, logger *zap.Logger) *ShellHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShellHandler{shell: svc, logger: logger}
}

// Navigation returns the sidebar content.
func (h *ShellHandler) Navigation(c *gin.Context) {
	c.JSON(http.StatusOK, h.shell.Navigation())
}

// View resolves the module in the path to a view.
func (h *ShellHandler) View(c *gin.Context) {
	view, err := h.shell.Resolve(c.Param("key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
