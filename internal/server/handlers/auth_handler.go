package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/service/session"
)

// SessionService is the session store as seen by the HTTP layer.
type SessionService interface {
	SignIn(ctx context.Context, email, password string) (session.Snapshot, error)
	SignUp(ctx context.Context, email, password, fullName string) (session.Snapshot, error)
	SignOut(ctx context.Context) error
	Snapshot() session.Snapshot
}

// AuthHandler exposes sign-in, sign-up and sign-out.
type AuthHandler struct {
	sessions SessionService
	logger   *zap.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(sessions SessionService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, logger: logger}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
}

// Session returns the current session state.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Snapshot())
}

// SignIn exchanges credentials for the process session.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SignUp creates an identity with an operator profile.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := h.sessions.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// SignOut ends the process session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context()); err != nil {
		// Local state is already cleared.
		h.logger.Warn("remote sign out failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, h.sessions.Snapshot())
}
