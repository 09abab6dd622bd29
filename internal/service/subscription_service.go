package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/kafka"
	"github.com/Dhoini/Subscription-service/internal/metrics"
	"github.com/Dhoini/Subscription-service/internal/repository"
	"github.com/Dhoini/Subscription-service/pkg/logger"
)

// SubscriptionService интерфейс сервиса состояния подписок.
type SubscriptionService interface {
	// GetStatus возвращает запись подписки. Отсутствующий пользователь
	// автоматически создается с is_subscribed=false.
	GetStatus(ctx context.Context, appID, userID string) (*domain.SubscriptionRecord, error)

	// CreateUser создает пользователя (upsert: существующая запись
	// перезаписывается, включая сброс флага подписки).
	CreateUser(ctx context.Context, appID, userID, email string) (*domain.SubscriptionRecord, error)

	// SetSubscribed напрямую выставляет флаг подписки существующему пользователю.
	SetSubscribed(ctx context.Context, appID, userID string, subscribed bool) error

	// MarkSubscribed переводит пользователя в состояние "подписан" по факту
	// успешной оплаты. Вызывается только обработчиком платежного события.
	// Отсутствие записи - логируемый no-op, не ошибка.
	MarkSubscribed(ctx context.Context, appID, userID, sessionID string) error
}

// subscriptionService реализация SubscriptionService.
type subscriptionService struct {
	repo     repository.UserRepository
	producer kafka.Producer // может быть nil - события тогда не публикуются
	metrics  metrics.SubscriptionMetrics
	log      *logger.Logger
}

// NewSubscriptionService создает новый сервис состояния подписок.
func NewSubscriptionService(
	repo repository.UserRepository,
	producer kafka.Producer,
	m metrics.SubscriptionMetrics,
	log *logger.Logger,
) SubscriptionService {
	return &subscriptionService{
		repo:     repo,
		producer: producer,
		metrics:  m,
		log:      log,
	}
}

// normalizeAppID подставляет идентификатор приложения по умолчанию.
func normalizeAppID(appID string) string {
	if appID == "" {
		return domain.DefaultAppID
	}
	return appID
}

// GetStatus возвращает запись подписки, автоматически создавая отсутствующую.
func (s *subscriptionService) GetStatus(ctx context.Context, appID, userID string) (*domain.SubscriptionRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: userID is required: %w", domain.ErrInvalidInput)
	}
	appID = normalizeAppID(appID)

	rec, err := s.repo.Get(ctx, appID, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// Политика auto-provision: первый запрос статуса создает запись
	// по умолчанию (без подписки)
	s.log.Infow("Auto-provisioning user on status lookup", "appID", appID, "userID", userID)
	return s.repo.Provision(ctx, domain.NewSubscriptionRecord(appID, userID, ""))
}

// CreateUser создает пользователя (upsert-overwrite).
func (s *subscriptionService) CreateUser(ctx context.Context, appID, userID, email string) (*domain.SubscriptionRecord, error) {
	if userID == "" || email == "" {
		return nil, fmt.Errorf("service: userID and email are required: %w", domain.ErrInvalidInput)
	}

	rec := domain.NewSubscriptionRecord(normalizeAppID(appID), userID, email)
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Infow("User created", "appID", rec.AppID, "userID", rec.UserID)
	s.publishEvent(ctx, kafka.TopicUserCreated, rec)

	return rec, nil
}

// SetSubscribed напрямую выставляет флаг подписки.
func (s *subscriptionService) SetSubscribed(ctx context.Context, appID, userID string, subscribed bool) error {
	if userID == "" {
		return fmt.Errorf("service: userID is required: %w", domain.ErrInvalidInput)
	}

	return s.repo.SetSubscribed(ctx, normalizeAppID(appID), userID, subscribed)
}

// MarkSubscribed переводит пользователя в состояние "подписан".
func (s *subscriptionService) MarkSubscribed(ctx context.Context, appID, userID, sessionID string) error {
	appID = normalizeAppID(appID)

	rec, err := s.repo.MarkSubscribed(ctx, appID, userID, sessionID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Событие оплаты для неизвестного пользователя: логируем и
			// выходим без ошибки, чтобы провайдер не ретраил доставку
			s.log.Warnw("Payment completion for unknown user, skipping update",
				"appID", appID, "userID", userID, "sessionID", sessionID)
			return nil
		}
		return err
	}

	s.log.Infow("User marked as subscribed", "appID", appID, "userID", userID, "sessionID", sessionID)
	if s.metrics != nil {
		s.metrics.IncSubscriptionActivated()
	}
	s.publishEvent(ctx, kafka.TopicSubscriptionActivated, rec)

	return nil
}

// publishEvent отправляет событие в Kafka, если продюсер сконфигурирован.
// Ошибки публикации не влияют на результат операции.
func (s *subscriptionService) publishEvent(ctx context.Context, topic string, rec *domain.SubscriptionRecord) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishSubscriptionEvent(ctx, topic, rec); err != nil {
		s.log.Warnw("Failed to publish subscription event", "error", err, "topic", topic, "userID", rec.UserID)
	}
}
