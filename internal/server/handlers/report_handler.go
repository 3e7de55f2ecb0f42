package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

const (
	defaultReportLimit = 7
	maxReportLimit     = 90
)

// SnapshotHistory reads the stored daily reports.
type SnapshotHistory interface {
	LatestSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error)
}

// ReportHandler serves the daily report history.
type ReportHandler struct {
	history SnapshotHistory
	logger  *zap.Logger
}

// NewReportHandler constructs the report history handler.
func NewReportHandler(history SnapshotHistory, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{history: history, logger: logger}
}

// List returns the newest snapshots first. ?limit= defaults to a week and is
// capped at maxReportLimit.
func (h *ReportHandler) List(c *gin.Context) {
	limit := defaultReportLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxReportLimit)
	}

	snapshots, err := h.history.LatestSnapshots(c.Request.Context(), int64(limit))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": snapshots, "count": len(snapshots)})
}
