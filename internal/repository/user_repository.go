package repository

import (
	"context"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
)

// UserRepository определяет операции хранилища над записями подписок.
type UserRepository interface {
	// Get возвращает запись по ключу (appID, userID) или domain.ErrNotFound.
	Get(ctx context.Context, appID, userID string) (*domain.SubscriptionRecord, error)

	// Upsert вставляет запись или полностью перезаписывает существующую.
	// Повторное создание пользователя сбрасывает is_subscribed в false.
	Upsert(ctx context.Context, rec *domain.SubscriptionRecord) error

	// Provision вставляет запись, только если ее еще нет, и возвращает
	// актуальное состояние. Существующая запись не изменяется, поэтому
	// автосоздание при чтении никогда не затирает результат оплаты.
	Provision(ctx context.Context, rec *domain.SubscriptionRecord) (*domain.SubscriptionRecord, error)

	// MarkSubscribed переводит запись в состояние "подписан", не затрагивая
	// прочие поля (email и т.д.). Возвращает domain.ErrNotFound, если записи нет.
	MarkSubscribed(ctx context.Context, appID, userID, sessionID string, paidAt time.Time) (*domain.SubscriptionRecord, error)

	// SetSubscribed напрямую выставляет флаг подписки.
	SetSubscribed(ctx context.Context, appID, userID string, subscribed bool) error
}
