package repository

import (
	"context"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/pkg/logger"
)

// CachedUserRepository реализует UserRepository с кешированием чтений.
// Ошибки кеша не фатальны: при любой проблеме с Redis запрос уходит в БД.
type CachedUserRepository struct {
	repo  UserRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedUserRepository создает новый репозиторий с кешированием.
func NewCachedUserRepository(repo UserRepository, cache *RedisCacheRepository, log *logger.Logger) UserRepository {
	return &CachedUserRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Get получает запись (сначала из кеша, потом из БД).
func (r *CachedUserRepository) Get(ctx context.Context, appID, userID string) (*domain.SubscriptionRecord, error) {
	cached, err := r.cache.GetCachedUser(ctx, appID, userID)
	if err != nil {
		r.log.Warnw("Error getting user record from cache", "error", err, "appID", appID, "userID", userID)
		// Продолжаем выполнение при ошибке кеша
	}
	if cached != nil {
		return cached, nil
	}

	rec, err := r.repo.Get(ctx, appID, userID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CacheUser(ctx, rec); err != nil {
		r.log.Warnw("Failed to cache user record after fetching", "error", err, "appID", appID, "userID", userID)
	}

	return rec, nil
}

// Upsert перезаписывает запись в БД и обновляет кеш.
func (r *CachedUserRepository) Upsert(ctx context.Context, rec *domain.SubscriptionRecord) error {
	if err := r.repo.Upsert(ctx, rec); err != nil {
		return err
	}

	if err := r.cache.CacheUser(ctx, rec); err != nil {
		r.log.Warnw("Failed to cache user record after upsert", "error", err, "appID", rec.AppID, "userID", rec.UserID)
	}

	return nil
}

// Provision создает запись при отсутствии и кеширует актуальное состояние.
func (r *CachedUserRepository) Provision(ctx context.Context, rec *domain.SubscriptionRecord) (*domain.SubscriptionRecord, error) {
	stored, err := r.repo.Provision(ctx, rec)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CacheUser(ctx, stored); err != nil {
		r.log.Warnw("Failed to cache user record after provisioning", "error", err, "appID", stored.AppID, "userID", stored.UserID)
	}

	return stored, nil
}

// MarkSubscribed обновляет запись в БД и кеше.
func (r *CachedUserRepository) MarkSubscribed(ctx context.Context, appID, userID, sessionID string, paidAt time.Time) (*domain.SubscriptionRecord, error) {
	rec, err := r.repo.MarkSubscribed(ctx, appID, userID, sessionID, paidAt)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CacheUser(ctx, rec); err != nil {
		r.log.Warnw("Failed to cache user record after payment update", "error", err, "appID", appID, "userID", userID)
	}

	return rec, nil
}

// SetSubscribed выставляет флаг в БД и инвалидирует кеш.
func (r *CachedUserRepository) SetSubscribed(ctx context.Context, appID, userID string, subscribed bool) error {
	if err := r.repo.SetSubscribed(ctx, appID, userID, subscribed); err != nil {
		return err
	}

	if err := r.cache.InvalidateUser(ctx, appID, userID); err != nil {
		r.log.Warnw("Failed to invalidate user cache after flag update", "error", err, "appID", appID, "userID", userID)
	}

	return nil
}
