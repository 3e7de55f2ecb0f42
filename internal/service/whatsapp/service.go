package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/config"
	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/service/commands"
	client "github.com/mamadbah2/erp-avicola/pkg/clients/whatsapp"
)

// sendTimeout bounds every outbound Cloud API call.
const sendTimeout = 10 * time.Second

// ErrNoRecipient is returned by Notify when no alert recipient is configured.
var ErrNoRecipient = errors.New("no alert recipient configured")

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	VerifySignature(body []byte, signature string) error
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	allowed    map[string]struct{}
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. Commands are accepted
// only from the allowed senders and the alert recipient.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		allowed:    make(map[string]struct{}),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	for _, sender := range cfg.AllowedSenders {
		svc.allowed[sender] = struct{}{}
	}
	if cfg.AlertRecipient != "" {
		svc.allowed[cfg.AlertRecipient] = struct{}{}
	}
	if len(svc.allowed) == 0 {
		svc.logger.Warn("no whatsapp senders allowed, inbound commands will be ignored")
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// VerifySignature checks that a raw webhook body was signed with the app secret.
func (s *MetaWhatsAppService) VerifySignature(body []byte, signature string) error {
	return client.VerifySignature(s.cfg.AppSecret, body, signature)
}

// HandleWebhook answers every command message in the payload. The first
// failure is returned after all messages have been tried.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, msg := range payload.Messages() {
		if err := s.handleInboundMessage(ctx, msg); err != nil {
			s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if !s.isAllowed(msg.From) {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}

	text := msg.CommandText()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		reply = "No se pudo completar la consulta. Inténtalo más tarde."
	}

	return s.send(ctx, msg.From, reply, false)
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

// Notify sends body to the configured alert recipient.
func (s *MetaWhatsAppService) Notify(ctx context.Context, body string) error {
	if s.cfg.AlertRecipient == "" {
		return ErrNoRecipient
	}
	return s.send(ctx, s.cfg.AlertRecipient, body, false)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: previewURL,
	})
	return err
}

func (s *MetaWhatsAppService) isAllowed(sender string) bool {
	_, ok := s.allowed[sender]
	return ok
}
