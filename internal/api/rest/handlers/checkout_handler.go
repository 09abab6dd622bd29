package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/service"
	"github.com/Dhoini/Subscription-service/pkg/logger"
	"github.com/Dhoini/Subscription-service/pkg/req"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler обработчик для создания платежных сессий
type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

// NewCheckoutHandler создает новый обработчик платежных сессий
func NewCheckoutHandler(svc service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		log:     log,
	}
}

// CreateCheckoutSession создает Stripe checkout-сессию и возвращает ее идентификатор
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	body, err := req.HandleBody[domain.CreateCheckoutSessionRequest](c, h.log)
	if err != nil {
		return
	}

	sessionID, err := h.service.CreateCheckoutSession(c.Request.Context(), body.AppID, body.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.log.Warnw("Invalid checkout session request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data"})
		case errors.Is(err, domain.ErrUpstreamService):
			h.log.Errorw("Stripe rejected checkout session creation", "error", err, "userID", body.UserID)
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		default:
			h.log.Errorw("Failed to create checkout session", "error", err, "userID", body.UserID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sessionID})
}
