package handlers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/repository"
	"github.com/Dhoini/Subscription-service/internal/service"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookTestRouter(t *testing.T, repo repository.UserRepository) (*gin.Engine, service.SubscriptionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.ERROR)
	subs := service.NewSubscriptionService(repo, nil, nil, log)
	webhooks := service.NewWebhookService(subs, nil, log)
	handler := NewWebhookHandler(webhooks, testWebhookSecret, log)

	r := gin.New()
	r.POST("/stripe-webhook", handler.HandleStripeWebhook)
	return r, subs
}

func checkoutCompletedPayload(t *testing.T, sessionID string, metadata map[string]string) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"type":        "checkout.session.completed",
		"api_version": stripe.APIVersion,
		"data": map[string]any{
			"object": map[string]any{
				"id":       sessionID,
				"metadata": metadata,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

// signPayload подписывает тело так же, как это делает Stripe.
func signPayload(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_ValidEventActivatesSubscription(t *testing.T) {
	repo := repository.NewInMemoryUserRepository()
	r, subs := newWebhookTestRouter(t, repo)
	ctx := context.Background()

	_, err := subs.CreateUser(ctx, "app-1", "user-1", "user1@example.com")
	require.NoError(t, err)

	payload := checkoutCompletedPayload(t, "cs_test_1", map[string]string{
		"userId": "user-1",
		"appId":  "app-1",
	})
	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())

	rec, err := subs.GetStatus(ctx, "app-1", "user-1")
	require.NoError(t, err)
	assert.True(t, rec.IsSubscribed)
}

func TestWebhookHandler_InvalidSignatureRejected(t *testing.T) {
	repo := repository.NewInMemoryUserRepository()
	r, subs := newWebhookTestRouter(t, repo)
	ctx := context.Background()

	_, err := subs.CreateUser(ctx, "app-1", "user-1", "user1@example.com")
	require.NoError(t, err)

	payload := checkoutCompletedPayload(t, "cs_test_1", map[string]string{
		"userId": "user-1",
		"appId":  "app-1",
	})
	w := postWebhook(r, payload, signPayload(payload, "whsec_wrong_secret"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Состояние не меняется при невалидной подписи
	rec, err := subs.GetStatus(ctx, "app-1", "user-1")
	require.NoError(t, err)
	assert.False(t, rec.IsSubscribed)
}

func TestWebhookHandler_MissingSignatureRejected(t *testing.T) {
	r, _ := newWebhookTestRouter(t, repository.NewInMemoryUserRepository())

	payload := checkoutCompletedPayload(t, "cs_test_1", map[string]string{"userId": "user-1"})
	w := postWebhook(r, payload, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_MissingMetadataStillAcknowledged(t *testing.T) {
	r, _ := newWebhookTestRouter(t, repository.NewInMemoryUserRepository())

	payload := checkoutCompletedPayload(t, "cs_test_1", map[string]string{})
	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())
}

func TestWebhookHandler_UnknownEventTypeAcknowledged(t *testing.T) {
	r, _ := newWebhookTestRouter(t, repository.NewInMemoryUserRepository())

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test_2",
		"type":        "invoice.paid",
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": map[string]any{}},
	})
	require.NoError(t, err)

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	assert.Equal(t, http.StatusOK, w.Code)
}

// failingRepo имитирует недоступность хранилища.
type failingRepo struct {
	repository.UserRepository
}

func (f *failingRepo) MarkSubscribed(ctx context.Context, appID, userID, sessionID string, paidAt time.Time) (*domain.SubscriptionRecord, error) {
	return nil, fmt.Errorf("repository: mark subscribed: %w", domain.ErrStorageUnavailable)
}

func TestWebhookHandler_StorageFailureStillAcknowledged(t *testing.T) {
	repo := &failingRepo{UserRepository: repository.NewInMemoryUserRepository()}
	r, _ := newWebhookTestRouter(t, repo)

	payload := checkoutCompletedPayload(t, "cs_test_1", map[string]string{"userId": "user-1"})
	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))

	// Подтверждение не зависит от результата сохранения
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())
}
