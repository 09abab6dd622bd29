package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/repository"
	"github.com/Dhoini/Subscription-service/internal/service"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStripeClient возвращает фиксированный идентификатор сессии.
type fakeStripeClient struct {
	err error
}

func (f *fakeStripeClient) CreateCheckoutSession(ctx context.Context, meta domain.CheckoutMetadata) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "cs_test_1", nil
}

func newCheckoutTestRouter(stripeErr error) (*gin.Engine, *repository.InMemoryUserRepository) {
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.ERROR)
	repo := repository.NewInMemoryUserRepository()
	svc := service.NewCheckoutService(repo, &fakeStripeClient{err: stripeErr}, nil, log)
	handler := NewCheckoutHandler(svc, log)

	r := gin.New()
	r.POST("/create-checkout-session", handler.CreateCheckoutSession)
	return r, repo
}

func TestCheckoutHandler_CreateCheckoutSession(t *testing.T) {
	r, repo := newCheckoutTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/create-checkout-session", map[string]string{"userId": "user-1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "cs_test_1"}`, w.Body.String())

	// Запись пользователя создается до оплаты
	rec, err := repo.Get(context.Background(), domain.DefaultAppID, "user-1")
	require.NoError(t, err)
	assert.False(t, rec.IsSubscribed)
}

func TestCheckoutHandler_MissingUserID(t *testing.T) {
	r, _ := newCheckoutTestRouter(nil)

	w := doJSON(r, http.MethodPost, "/create-checkout-session", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandler_StripeUnavailable(t *testing.T) {
	r, _ := newCheckoutTestRouter(fmt.Errorf("stripe: failed to create checkout session: %w", domain.ErrUpstreamService))

	w := doJSON(r, http.MethodPost, "/create-checkout-session", map[string]string{"userId": "user-1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
