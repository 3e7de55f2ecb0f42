package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// DashboardService provides the headline figures.
type DashboardService interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
}

// InventoryService lists inventory rows.
type InventoryService interface {
	List(ctx context.Context, search string) ([]models.InventoryRow, error)
}

// AccountService lists chart-of-accounts rows.
type AccountService interface {
	List(ctx context.Context, search string) ([]models.AccountRow, error)
}

// ViewHandler serves the read-only views.
type ViewHandler struct {
	dashboard DashboardService
	inventory InventoryService
	accounts  AccountService
	logger    *zap.Logger
}

// NewViewHandler constructs the read-only view handler.
func NewViewHandler(dashboard DashboardService, inventory InventoryService, accounts AccountService, logger *zap.Logger) *ViewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewHandler{dashboard: dashboard, inventory: inventory, accounts: accounts, logger: logger}
}

// Dashboard returns the dashboard figures.
func (h *ViewHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Inventory returns the inventory table, filtered by ?search=.
func (h *ViewHandler) Inventory(c *gin.Context) {
	rows, err := h.inventory.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows, "count": len(rows)})
}

// Accounts returns the chart of accounts, filtered by ?search=.
func (h *ViewHandler) Accounts(c *gin.Context) {
	rows, err := h.accounts.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": rows, "count": len(rows)})
}
