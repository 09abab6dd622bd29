package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/metrics"
	"github.com/Dhoini/Subscription-service/internal/recaptcha"
	"github.com/Dhoini/Subscription-service/pkg/logger"
	"github.com/Dhoini/Subscription-service/pkg/req"

	"github.com/gin-gonic/gin"
)

// RecaptchaHandler обработчик для проверки reCAPTCHA токенов
type RecaptchaHandler struct {
	verifier recaptcha.Verifier
	metrics  metrics.SubscriptionMetrics
	log      *logger.Logger
}

// NewRecaptchaHandler создает новый обработчик проверки reCAPTCHA
func NewRecaptchaHandler(verifier recaptcha.Verifier, m metrics.SubscriptionMetrics, log *logger.Logger) *RecaptchaHandler {
	return &RecaptchaHandler{
		verifier: verifier,
		metrics:  m,
		log:      log,
	}
}

// VerifyRecaptcha проверяет клиентский токен reCAPTCHA через Google siteverify
func (h *RecaptchaHandler) VerifyRecaptcha(c *gin.Context) {
	body, err := req.HandleBody[domain.VerifyRecaptchaRequest](c, h.log)
	if err != nil {
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), body.Token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data"})
		case errors.Is(err, domain.ErrUpstreamService):
			h.log.Errorw("reCAPTCHA verification unavailable", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "verification service unavailable"})
		default:
			h.log.Errorw("reCAPTCHA verification failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		h.incVerification("error")
		return
	}

	if result.Success {
		h.incVerification("success")
	} else {
		h.incVerification("failure")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"score":   result.Score,
	})
}

func (h *RecaptchaHandler) incVerification(outcome string) {
	if h.metrics != nil {
		h.metrics.IncRecaptchaVerification(outcome)
	}
}
