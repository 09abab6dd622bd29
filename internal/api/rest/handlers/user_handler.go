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

// UserHandler обработчик для пользователей и их статуса подписки
type UserHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(svc service.SubscriptionService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		log:     log,
	}
}

// GetSubscription возвращает статус подписки пользователя.
// Неизвестный пользователь автоматически создается со статусом "не подписан".
func (h *UserHandler) GetSubscription(c *gin.Context) {
	userID := c.Param("id")
	appID := c.Query("appId")

	rec, err := h.service.GetStatus(c.Request.Context(), appID, userID)
	if err != nil {
		h.respondError(c, err, "Failed to get subscription status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isSubscribed":  rec.IsSubscribed,
		"paymentStatus": rec.PaymentStatus,
	})
}

// SetSubscription напрямую выставляет флаг подписки пользователю
func (h *UserHandler) SetSubscription(c *gin.Context) {
	userID := c.Param("id")

	body, err := req.HandleBody[domain.SetSubscriptionRequest](c, h.log)
	if err != nil {
		return
	}

	if err := h.service.SetSubscribed(c.Request.Context(), body.AppID, userID, *body.IsSubscribed); err != nil {
		h.respondError(c, err, "Failed to set subscription status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateUser создает нового пользователя (существующая запись перезаписывается)
func (h *UserHandler) CreateUser(c *gin.Context) {
	body, err := req.HandleBody[domain.CreateUserRequest](c, h.log)
	if err != nil {
		return
	}

	rec, err := h.service.CreateUser(c.Request.Context(), body.AppID, body.ID, body.Email)
	if err != nil {
		h.respondError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// respondError преобразует доменную ошибку в HTTP-ответ
func (h *UserHandler) respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		h.log.Warnw(msg, "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data"})
	case errors.Is(err, domain.ErrNotFound):
		h.log.Warnw(msg, "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		h.log.Errorw(msg, "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
