package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/metrics"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/stripe/stripe-go/v78"
)

// WebhookService интерфейс обработки событий Stripe.
type WebhookService interface {
	// ProcessEvent обрабатывает событие Stripe с уже проверенной подписью.
	// Возвращаемая ошибка предназначена для логирования и метрик: HTTP-ответ
	// вебхука на нее не опирается, событие подтверждается в любом случае.
	ProcessEvent(ctx context.Context, event stripe.Event) error
}

// webhookService реализация WebhookService.
type webhookService struct {
	subscriptions SubscriptionService
	metrics       metrics.SubscriptionMetrics
	log           *logger.Logger
}

// NewWebhookService создает новый сервис обработки вебхуков.
func NewWebhookService(subscriptions SubscriptionService, m metrics.SubscriptionMetrics, log *logger.Logger) WebhookService {
	return &webhookService{
		subscriptions: subscriptions,
		metrics:       m,
		log:           log,
	}
}

// ProcessEvent диспетчеризует событие по его типу.
func (s *webhookService) ProcessEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	default:
		// Неизвестные типы событий подтверждаем без обработки, чтобы
		// Stripe не ретраил их доставку
		s.log.Debugw("Ignoring unhandled webhook event type", "type", string(event.Type), "eventID", event.ID)
		s.incWebhookEvent(string(event.Type), metrics.WebhookOutcomeIgnored)
		return nil
	}
}

// handleCheckoutCompleted обрабатывает завершение checkout-сессии:
// извлекает метаданные и помечает пользователя подписанным.
func (s *webhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.log.Errorw("Failed to unmarshal checkout session from event", "error", err, "eventID", event.ID)
		s.incWebhookEvent(string(event.Type), metrics.WebhookOutcomeInvalid)
		return err
	}

	meta, err := domain.CheckoutMetadataFromMap(session.Metadata)
	if err != nil {
		if errors.Is(err, domain.ErrMissingUserID) {
			// Сессия создана не нами или метаданные потеряны. Обновлять
			// нечего, событие все равно подтверждаем
			s.log.Warnw("Checkout session completed without userId metadata, skipping",
				"eventID", event.ID, "sessionID", session.ID)
			s.incWebhookEvent(string(event.Type), metrics.WebhookOutcomeInvalid)
			return nil
		}
		return err
	}

	if err := s.subscriptions.MarkSubscribed(ctx, meta.AppID, meta.UserID, session.ID); err != nil {
		s.log.Errorw("Failed to mark user as subscribed from webhook",
			"error", err, "appID", meta.AppID, "userID", meta.UserID, "sessionID", session.ID)
		s.incWebhookEvent(string(event.Type), metrics.WebhookOutcomeFailed)
		return err
	}

	s.incWebhookEvent(string(event.Type), metrics.WebhookOutcomeProcessed)
	return nil
}

func (s *webhookService) incWebhookEvent(eventType, outcome string) {
	if s.metrics != nil {
		s.metrics.IncWebhookEvent(eventType, outcome)
	}
}
