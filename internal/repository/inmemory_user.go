package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
)

// InMemoryUserRepository - реализация UserRepository в памяти.
// Используется в тестах и для локальной разработки без базы данных.
type InMemoryUserRepository struct {
	records map[string]domain.SubscriptionRecord
	mutex   sync.RWMutex
}

// NewInMemoryUserRepository создает новый репозиторий в памяти.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		records: make(map[string]domain.SubscriptionRecord),
	}
}

func recordKey(appID, userID string) string {
	return appID + "/" + userID
}

// Get возвращает запись по ключу (appID, userID).
func (r *InMemoryUserRepository) Get(ctx context.Context, appID, userID string) (*domain.SubscriptionRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rec, exists := r.records[recordKey(appID, userID)]
	if !exists {
		return nil, domain.ErrNotFound
	}

	return &rec, nil
}

// Upsert вставляет или полностью перезаписывает запись.
func (r *InMemoryUserRepository) Upsert(ctx context.Context, rec *domain.SubscriptionRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.records[recordKey(rec.AppID, rec.UserID)] = *rec

	return nil
}

// Provision вставляет запись, только если ее еще нет.
func (r *InMemoryUserRepository) Provision(ctx context.Context, rec *domain.SubscriptionRecord) (*domain.SubscriptionRecord, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := recordKey(rec.AppID, rec.UserID)
	if existing, exists := r.records[key]; exists {
		return &existing, nil
	}

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.records[key] = *rec

	stored := r.records[key]
	return &stored, nil
}

// MarkSubscribed переводит запись в состояние "подписан".
func (r *InMemoryUserRepository) MarkSubscribed(ctx context.Context, appID, userID, sessionID string, paidAt time.Time) (*domain.SubscriptionRecord, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := recordKey(appID, userID)
	rec, exists := r.records[key]
	if !exists {
		return nil, domain.ErrNotFound
	}

	rec.IsSubscribed = true
	rec.PaymentStatus = domain.PaymentStatusPaid
	rec.LastPaymentDate = &paidAt
	rec.StripeSessionID = sessionID
	rec.UpdatedAt = paidAt
	r.records[key] = rec

	return &rec, nil
}

// SetSubscribed напрямую выставляет флаг подписки.
func (r *InMemoryUserRepository) SetSubscribed(ctx context.Context, appID, userID string, subscribed bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := recordKey(appID, userID)
	rec, exists := r.records[key]
	if !exists {
		return domain.ErrNotFound
	}

	rec.IsSubscribed = subscribed
	rec.UpdatedAt = time.Now()
	r.records[key] = rec

	return nil
}
