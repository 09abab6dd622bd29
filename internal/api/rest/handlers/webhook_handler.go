package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/service"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78/webhook"
)

// maxWebhookBodyBytes ограничивает размер тела вебхука (64 KiB).
const maxWebhookBodyBytes = 64 * 1024

// WebhookHandler обработчик для вебхуков Stripe
type WebhookHandler struct {
	service       service.WebhookService
	webhookSecret string
	log           *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(svc service.WebhookService, webhookSecret string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service:       svc,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// HandleStripeWebhook обрабатывает вебхуки от Stripe.
// Подпись проверяется по сырому телу запроса. После успешной проверки
// и разбора событие всегда подтверждается ответом 200, независимо от
// результата обработки: ошибки сохранения видны в логах и метриках,
// но не провоцируют ретраи со стороны Stripe.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)

	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warnw("Failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
		return
	}

	event, err := webhook.ConstructEvent(bodyBytes, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		verr := fmt.Errorf("%w: %w", domain.ErrWebhookVerificationFailed, err)
		h.log.Warnw("Webhook signature verification failed", "error", verr, "clientIP", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
		return
	}

	if err := h.service.ProcessEvent(c.Request.Context(), event); err != nil {
		h.log.Errorw("Webhook event processing failed", "error", err, "eventID", event.ID, "type", string(event.Type))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
