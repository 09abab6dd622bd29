package service

import (
	"context"
	"fmt"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/metrics"
	"github.com/Dhoini/Subscription-service/internal/repository"
	"github.com/Dhoini/Subscription-service/internal/stripe"
	"github.com/Dhoini/Subscription-service/pkg/logger"
)

// CheckoutService интерфейс создания платежных сессий.
type CheckoutService interface {
	// CreateCheckoutSession создает Stripe checkout-сессию для пользователя
	// и возвращает ее идентификатор для редиректа на страницу оплаты.
	CreateCheckoutSession(ctx context.Context, appID, userID string) (string, error)
}

// checkoutService реализация CheckoutService.
type checkoutService struct {
	repo         repository.UserRepository
	stripeClient stripe.Client
	metrics      metrics.SubscriptionMetrics
	log          *logger.Logger
}

// NewCheckoutService создает новый сервис платежных сессий.
func NewCheckoutService(
	repo repository.UserRepository,
	stripeClient stripe.Client,
	m metrics.SubscriptionMetrics,
	log *logger.Logger,
) CheckoutService {
	return &checkoutService{
		repo:         repo,
		stripeClient: stripeClient,
		metrics:      m,
		log:          log,
	}
}

// CreateCheckoutSession создает checkout-сессию Stripe.
func (s *checkoutService) CreateCheckoutSession(ctx context.Context, appID, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("service: userID is required: %w", domain.ErrInvalidInput)
	}
	appID = normalizeAppID(appID)

	// Запись должна существовать до оплаты, иначе вебхук завершения
	// не найдет кого помечать подписанным
	if _, err := s.repo.Provision(ctx, domain.NewSubscriptionRecord(appID, userID, "")); err != nil {
		return "", err
	}

	meta := domain.CheckoutMetadata{UserID: userID, AppID: appID}
	sessionID, err := s.stripeClient.CreateCheckoutSession(ctx, meta)
	if err != nil {
		return "", err
	}

	s.log.Infow("Checkout session created", "appID", appID, "userID", userID, "sessionID", sessionID)
	if s.metrics != nil {
		s.metrics.IncCheckoutSessionCreated()
	}

	return sessionID, nil
}
