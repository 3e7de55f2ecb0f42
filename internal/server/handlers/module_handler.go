package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// ModuleService is the module visibility store as seen by the HTTP layer.
type ModuleService interface {
	FetchModules(ctx context.Context) error
	ToggleModule(ctx context.Context, moduleKey string, enabled bool) error
	Modules() []models.SystemModule
	EnabledModules() []models.SystemModule
}

// ModuleHandler lists and toggles feature modules.
type ModuleHandler struct {
	modules ModuleService
	logger  *zap.Logger
}

// NewModuleHandler constructs the module handler.
func NewModuleHandler(modules ModuleService, logger *zap.Logger) *ModuleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleHandler{modules: modules, logger: logger}
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type modulesResponse struct {
	Modules []models.SystemModule `json:"modules"`
	Enabled []models.SystemModule `json:"enabled"`
}

func (h *ModuleHandler) response() modulesResponse {
	return modulesResponse{Modules: h.modules.Modules(), Enabled: h.modules.EnabledModules()}
}

// List returns all modules and the enabled subset from the last fetch.
func (h *ModuleHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.response())
}

// Refresh re-fetches the module list.
func (h *ModuleHandler) Refresh(c *gin.Context) {
	if err := h.modules.FetchModules(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.response())
}

// Toggle writes a module's enabled flag.
func (h *ModuleHandler) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.modules.ToggleModule(c.Request.Context(), c.Param("key"), *req.Enabled); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.response())
}
