package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	// Префикс ключей для записей подписок
	userKeyPrefix = "user:"

	// TTL для кэша
	defaultCacheTTL = 15 * time.Minute
)

// RedisCacheRepository реализует кеширование записей подписок в Redis.
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository создает новый экземпляр Redis репозитория.
func NewRedisCacheRepository(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("cache: failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &RedisCacheRepository{
		client: client,
		log:    log,
	}, nil
}

// Close закрывает соединение с Redis.
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

func (r *RedisCacheRepository) key(appID, userID string) string {
	return fmt.Sprintf("%s%s:%s", userKeyPrefix, appID, userID)
}

// CacheUser кеширует запись подписки в Redis.
func (r *RedisCacheRepository) CacheUser(ctx context.Context, rec *domain.SubscriptionRecord) error {
	key := r.key(rec.AppID, rec.UserID)

	data, err := json.Marshal(rec)
	if err != nil {
		r.log.Errorw("Failed to marshal user record for caching", "error", err, "userID", rec.UserID)
		return fmt.Errorf("cache: failed to marshal user record: %w", err)
	}

	if err := r.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache user record in Redis", "error", err, "userID", rec.UserID)
		return fmt.Errorf("cache: failed to cache user record: %w", err)
	}

	r.log.Debugw("User record cached successfully", "appID", rec.AppID, "userID", rec.UserID)
	return nil
}

// GetCachedUser получает запись подписки из кеша.
// Отсутствие записи в кеше не является ошибкой - возвращается (nil, nil).
func (r *RedisCacheRepository) GetCachedUser(ctx context.Context, appID, userID string) (*domain.SubscriptionRecord, error) {
	key := r.key(appID, userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.log.Debugw("User record not found in cache", "appID", appID, "userID", userID)
			return nil, nil
		}
		r.log.Errorw("Error getting user record from Redis", "error", err, "appID", appID, "userID", userID)
		return nil, fmt.Errorf("cache: failed to get user record: %w", err)
	}

	var rec domain.SubscriptionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.log.Errorw("Failed to unmarshal cached user record", "error", err, "appID", appID, "userID", userID)
		return nil, fmt.Errorf("cache: failed to unmarshal cached user record: %w", err)
	}

	return &rec, nil
}

// InvalidateUser удаляет запись подписки из кеша.
func (r *RedisCacheRepository) InvalidateUser(ctx context.Context, appID, userID string) error {
	key := r.key(appID, userID)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Errorw("Failed to invalidate user cache", "error", err, "appID", appID, "userID", userID)
		return fmt.Errorf("cache: failed to invalidate user cache: %w", err)
	}

	r.log.Debugw("User cache invalidated", "appID", appID, "userID", userID)
	return nil
}
