package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dhoini/Subscription-service/internal/repository"
	"github.com/Dhoini/Subscription-service/internal/service"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserTestRouter(t *testing.T) (*gin.Engine, service.SubscriptionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.ERROR)
	subs := service.NewSubscriptionService(repository.NewInMemoryUserRepository(), nil, nil, log)
	handler := NewUserHandler(subs, log)

	r := gin.New()
	r.POST("/users", handler.CreateUser)
	r.GET("/users/:id/subscription", handler.GetSubscription)
	r.POST("/users/:id/subscription", handler.SetSubscription)
	return r, subs
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func subscriptionStatus(t *testing.T, r *gin.Engine, userID string) bool {
	t.Helper()

	w := doJSON(r, http.MethodGet, "/users/"+userID+"/subscription", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		IsSubscribed bool `json:"isSubscribed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.IsSubscribed
}

func TestUserHandler_CreateUser(t *testing.T) {
	r, _ := newUserTestRouter(t)

	w := doJSON(r, http.MethodPost, "/users", map[string]string{
		"id":    "user-1",
		"email": "user1@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var rec struct {
		UserID       string `json:"user_id"`
		IsSubscribed bool   `json:"is_subscribed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "user-1", rec.UserID)
	assert.False(t, rec.IsSubscribed)
}

func TestUserHandler_CreateUser_InvalidBody(t *testing.T) {
	r, _ := newUserTestRouter(t)

	// Отсутствует email
	w := doJSON(r, http.MethodPost, "/users", map[string]string{"id": "user-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Невалидный email
	w = doJSON(r, http.MethodPost, "/users", map[string]string{"id": "user-1", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_GetSubscription_AutoProvisions(t *testing.T) {
	r, _ := newUserTestRouter(t)

	// Пользователь не создавался, но запрос статуса отвечает 200
	assert.False(t, subscriptionStatus(t, r, "ghost"))
}

func TestUserHandler_SetSubscription(t *testing.T) {
	r, _ := newUserTestRouter(t)

	w := doJSON(r, http.MethodPost, "/users", map[string]string{"id": "user-1", "email": "user1@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/users/user-1/subscription", map[string]any{"isSubscribed": true})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.True(t, subscriptionStatus(t, r, "user-1"))
}

func TestUserHandler_SetSubscription_MissingFlag(t *testing.T) {
	r, _ := newUserTestRouter(t)

	w := doJSON(r, http.MethodPost, "/users/user-1/subscription", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_SubscriptionLifecycle(t *testing.T) {
	r, subs := newUserTestRouter(t)

	w := doJSON(r, http.MethodPost, "/users", map[string]string{"id": "user-1", "email": "user1@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.False(t, subscriptionStatus(t, r, "user-1"))

	// Имитируем успешную оплату
	require.NoError(t, subs.MarkSubscribed(context.Background(), "", "user-1", "cs_test_1"))

	assert.True(t, subscriptionStatus(t, r, "user-1"))
}
