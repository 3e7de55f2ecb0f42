package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// FlockService backs the flock list and form.
type FlockService interface {
	List(ctx context.Context, search string) ([]models.FlockView, error)
	Get(ctx context.Context, id string) (*models.Flock, error)
	Defaults() models.FlockInput
	Create(ctx context.Context, input models.FlockInput) (*models.Flock, error)
	Update(ctx context.Context, id string, input models.FlockInput) (*models.Flock, error)
	Delete(ctx context.Context, id string) error
}

// FlockHandler serves flock CRUD.
type FlockHandler struct {
	flocks FlockService
	logger *zap.Logger
}

// NewFlockHandler constructs the flock handler.
func NewFlockHandler(flocks FlockService, logger *zap.Logger) *FlockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlockHandler{flocks: flocks, logger: logger}
}

// List returns the flock cards, filtered by ?search=.
func (h *FlockHandler) List(c *gin.Context) {
	views, err := h.flocks.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flocks": views, "count": len(views)})
}

// Defaults returns the values of an empty form.
func (h *FlockHandler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, h.flocks.Defaults())
}

// Get returns one flock.
func (h *FlockHandler) Get(c *gin.Context) {
	flock, err := h.flocks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewFlockView(*flock))
}

// Create inserts a flock from the form body.
func (h *FlockHandler) Create(c *gin.Context) {
	var input models.FlockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	flock, err := h.flocks.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewFlockView(*flock))
}

// Update overwrites a flock from the form body.
func (h *FlockHandler) Update(c *gin.Context) {
	var input models.FlockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	flock, err := h.flocks.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewFlockView(*flock))
}

// Delete removes a flock.
func (h *FlockHandler) Delete(c *gin.Context) {
	if err := h.flocks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
