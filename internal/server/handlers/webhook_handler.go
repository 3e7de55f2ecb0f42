package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	service "github.com/mamadbah2/erp-avicola/internal/service/whatsapp"
	"github.com/mamadbah2/erp-avicola/pkg/clients/whatsapp"
)

// WebhookHandler serves the WhatsApp command channel.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the webhook handler.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

type verifyQuery struct {
	Mode      string `form:"hub.mode"`
	Token     string `form:"hub.verify_token"`
	Challenge string `form:"hub.challenge"`
}

// Verify answers Meta's subscription challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	var q verifyQuery
	_ = c.ShouldBindQuery(&q)

	challenge, err := h.svc.VerifyWebhookToken(q.Mode, q.Token, q.Challenge)
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.String("mode", q.Mode), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive answers the commands of a callback. Bodies without a valid app
// secret signature are rejected before decoding. Once the body decodes the
// callback is acknowledged, even if a reply failed, so Meta does not redeliver
// messages that were already answered.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := h.svc.VerifySignature(body, c.GetHeader(whatsapp.SignatureHeader)); err != nil {
		h.logger.Warn("webhook signature rejected", zap.String("client_ip", c.ClientIP()), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log := h.logger.With(
		zap.String("request_id", c.GetString("request_id")),
		zap.Int("messages", len(payload.Messages())))

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		log.Error("webhook processed with failures", zap.Error(err))
	} else {
		log.Debug("webhook processed")
	}
	c.Status(http.StatusOK)
}

// SendMessage pushes a manual message from the signed-in operator.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.String("to", req.To), zap.Error(err))

		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Detail.Message, "code": apiErr.Detail.Code})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sent", "to": req.To})
}
