package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/server/handlers"
)

// Handlers groups the HTTP handlers. Webhook is nil when WhatsApp is not
// configured and Reports is nil without a snapshot store.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Modules *handlers.ModuleHandler
	Shell   *handlers.ShellHandler
	Views   *handlers.ViewHandler
	Flocks  *handlers.FlockHandler
	Webhook *handlers.WebhookHandler
	Reports *handlers.ReportHandler
}

// Gates are the state the access middlewares read.
type Gates struct {
	Sessions SessionState
	Modules  ModuleState
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, gates Gates, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	auth.GET("/session", h.Auth.Session)
	auth.POST("/sign-in", h.Auth.SignIn)
	auth.POST("/sign-up", h.Auth.SignUp)
	auth.POST("/sign-out", h.Auth.SignOut)

	api := r.Group("/api", sessionGate(gates.Sessions))
	api.GET("/navigation", h.Shell.Navigation)
	api.GET("/shell/:key", h.Shell.View)

	api.GET("/modules", h.Modules.List)
	api.POST("/modules/refresh", h.Modules.Refresh)
	api.PUT("/modules/:key", requireRole(gates.Sessions, models.RoleAdmin), h.Modules.Toggle)

	api.GET("/dashboard", moduleGate(gates.Modules, models.ModuleDashboard), h.Views.Dashboard)
	api.GET("/inventory", moduleGate(gates.Modules, models.ModuleInventory), h.Views.Inventory)
	api.GET("/accounts", moduleGate(gates.Modules, models.ModuleAccounting), h.Views.Accounts)

	flocks := api.Group("/flocks", moduleGate(gates.Modules, models.ModuleProduction))
	flocks.GET("", h.Flocks.List)
	flocks.GET("/defaults", h.Flocks.Defaults)
	flocks.GET("/:id", h.Flocks.Get)
	flocks.POST("", h.Flocks.Create)
	flocks.PUT("/:id", h.Flocks.Update)
	flocks.DELETE("/:id", h.Flocks.Delete)

	if h.Reports != nil {
		api.GET("/reports", moduleGate(gates.Modules, models.ModuleDashboard), h.Reports.List)
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		api.POST("/send-message", h.Webhook.SendMessage)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Bool("whatsapp", h.Webhook != nil), zap.Bool("reports", h.Reports != nil))
	}

	return r
}
