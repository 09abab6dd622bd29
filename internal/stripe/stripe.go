package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// CheckoutConfig задает параметры позиции чекаута и URL возврата.
type CheckoutConfig struct {
	ProductName string // Название позиции в чекауте
	UnitAmount  int64  // Цена в минимальных единицах валюты (центы и т.п.)
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Client определяет методы для взаимодействия со Stripe API.
type Client interface {
	// CreateCheckoutSession создает checkout-сессию для разовой оплаты подписки
	// и возвращает ее идентификатор. Метаданные сессии вернутся в вебхуке
	// checkout.session.completed и используются для сопоставления платежа
	// с пользователем.
	CreateCheckoutSession(ctx context.Context, meta domain.CheckoutMetadata) (string, error)
}

// stripeClient реализует интерфейс Client.
type stripeClient struct {
	client *client.API
	cfg    CheckoutConfig
	log    *logger.Logger
}

// NewStripeClient создает новый экземпляр клиента Stripe.
func NewStripeClient(apiKey string, cfg CheckoutConfig, log *logger.Logger) Client {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &stripeClient{
		client: sc,
		cfg:    cfg,
		log:    log,
	}
}

// CreateCheckoutSession создает checkout-сессию в Stripe.
func (sc *stripeClient) CreateCheckoutSession(ctx context.Context, meta domain.CheckoutMetadata) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(sc.cfg.Currency),
					UnitAmount: stripe.Int64(sc.cfg.UnitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(sc.cfg.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(sc.cfg.SuccessURL),
		CancelURL:  stripe.String(sc.cfg.CancelURL),
		Params: stripe.Params{
			Context: ctx,
			// Повторная отправка одного и того же запроса не создаст вторую сессию
			IdempotencyKey: stripe.String(uuid.NewString()),
			Metadata:       meta.ToMap(),
		},
	}

	session, err := sc.client.CheckoutSessions.New(params)
	if err != nil {
		logStripeError(sc.log, "CreateCheckoutSession", err)
		return "", fmt.Errorf("stripe: failed to create checkout session: %w: %w", domain.ErrUpstreamService, err)
	}

	sc.log.Infow("Stripe checkout session created", "sessionID", session.ID, "userID", meta.UserID, "appID", meta.AppID)
	return session.ID, nil
}

// logStripeError - вспомогательная функция для логирования деталей ошибки Stripe.
func logStripeError(log *logger.Logger, operation string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		log.Errorw("Stripe API error",
			"operation", operation,
			"type", string(stripeErr.Type),
			"code", string(stripeErr.Code),
			"param", stripeErr.Param,
			"message", stripeErr.Msg,
			"request_id", stripeErr.RequestID,
			"status_code", stripeErr.HTTPStatusCode,
		)
	} else {
		log.Errorw("Non-Stripe error during Stripe operation",
			"operation", operation,
			"error", err,
		)
	}
}
