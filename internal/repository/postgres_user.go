package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// Схема создается при старте, чтобы сервис можно было поднять на пустой базе.
const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
    app_id            TEXT        NOT NULL,
    user_id           TEXT        NOT NULL,
    email             TEXT        NOT NULL DEFAULT '',
    is_subscribed     BOOLEAN     NOT NULL DEFAULT FALSE,
    payment_status    TEXT        NOT NULL DEFAULT '',
    last_payment_date TIMESTAMPTZ,
    stripe_session_id TEXT        NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL,
    updated_at        TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (app_id, user_id)
)`

// postgresUserRepo реализует UserRepository для PostgreSQL.
type postgresUserRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresUserRepository создает новый экземпляр репозитория для PostgreSQL
// и гарантирует наличие схемы.
func NewPostgresUserRepository(db *sqlx.DB, log *logger.Logger) (UserRepository, error) {
	if _, err := db.Exec(usersSchema); err != nil {
		log.Errorw("Failed to ensure users schema", "error", err)
		return nil, storageErr("failed to ensure schema", err)
	}
	return &postgresUserRepo{db: db, log: log}, nil
}

// Get возвращает запись по ключу (appID, userID).
func (r *postgresUserRepo) Get(ctx context.Context, appID, userID string) (*domain.SubscriptionRecord, error) {
	var rec domain.SubscriptionRecord
	query := `
        SELECT app_id, user_id, email, is_subscribed, payment_status,
               last_payment_date, stripe_session_id, created_at, updated_at
        FROM users
        WHERE app_id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &rec, query, appID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugw("User not found", "appID", appID, "userID", userID)
			return nil, domain.ErrNotFound
		}
		r.log.Errorw("Failed to get user from DB", "error", err, "appID", appID, "userID", userID)
		return nil, storageErr("failed to get user", err)
	}

	return &rec, nil
}

// Upsert вставляет или полностью перезаписывает запись пользователя.
func (r *postgresUserRepo) Upsert(ctx context.Context, rec *domain.SubscriptionRecord) error {
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	// Конфликт по ключу перезаписывает запись целиком,
	// включая сброс is_subscribed
	query := `
        INSERT INTO users (
            app_id, user_id, email, is_subscribed, payment_status,
            last_payment_date, stripe_session_id, created_at, updated_at
        ) VALUES (
            :app_id, :user_id, :email, :is_subscribed, :payment_status,
            :last_payment_date, :stripe_session_id, :created_at, :updated_at
        )
        ON CONFLICT (app_id, user_id) DO UPDATE SET
            email             = EXCLUDED.email,
            is_subscribed     = EXCLUDED.is_subscribed,
            payment_status    = EXCLUDED.payment_status,
            last_payment_date = EXCLUDED.last_payment_date,
            stripe_session_id = EXCLUDED.stripe_session_id,
            updated_at        = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		r.log.Errorw("Failed to upsert user in DB", "error", err, "appID", rec.AppID, "userID", rec.UserID)
		return storageErr("failed to upsert user", err)
	}

	r.log.Debugw("Successfully upserted user in DB", "appID", rec.AppID, "userID", rec.UserID)
	return nil
}

// Provision вставляет запись, только если ее еще нет, и возвращает актуальное состояние.
func (r *postgresUserRepo) Provision(ctx context.Context, rec *domain.SubscriptionRecord) (*domain.SubscriptionRecord, error) {
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	// DO NOTHING вместо DO UPDATE: параллельное обновление оплаты не должно
	// быть затерто автосозданием при чтении.
	query := `
        INSERT INTO users (
            app_id, user_id, email, is_subscribed, payment_status,
            last_payment_date, stripe_session_id, created_at, updated_at
        ) VALUES (
            :app_id, :user_id, :email, :is_subscribed, :payment_status,
            :last_payment_date, :stripe_session_id, :created_at, :updated_at
        )
        ON CONFLICT (app_id, user_id) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		r.log.Errorw("Failed to provision user in DB", "error", err, "appID", rec.AppID, "userID", rec.UserID)
		return nil, storageErr("failed to provision user", err)
	}

	return r.Get(ctx, rec.AppID, rec.UserID)
}

// MarkSubscribed переводит запись в состояние "подписан".
func (r *postgresUserRepo) MarkSubscribed(ctx context.Context, appID, userID, sessionID string, paidAt time.Time) (*domain.SubscriptionRecord, error) {
	var rec domain.SubscriptionRecord

	// Обновляем только платежные поля, email и прочее не трогаем.
	query := `
        UPDATE users SET
            is_subscribed     = TRUE,
            payment_status    = $3,
            last_payment_date = $4,
            stripe_session_id = $5,
            updated_at        = $4
        WHERE app_id = $1 AND user_id = $2
        RETURNING app_id, user_id, email, is_subscribed, payment_status,
                  last_payment_date, stripe_session_id, created_at, updated_at`

	err := r.db.GetContext(ctx, &rec, query, appID, userID, domain.PaymentStatusPaid, paidAt, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnw("MarkSubscribed matched no user", "appID", appID, "userID", userID)
			return nil, domain.ErrNotFound
		}
		r.log.Errorw("Failed to mark user subscribed in DB", "error", err, "appID", appID, "userID", userID)
		return nil, storageErr("failed to mark user subscribed", err)
	}

	r.log.Debugw("Successfully marked user subscribed", "appID", appID, "userID", userID, "sessionID", sessionID)
	return &rec, nil
}

// SetSubscribed напрямую выставляет флаг подписки.
func (r *postgresUserRepo) SetSubscribed(ctx context.Context, appID, userID string, subscribed bool) error {
	query := `
        UPDATE users SET
            is_subscribed = $3,
            updated_at    = $4
        WHERE app_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, appID, userID, subscribed, time.Now())
	if err != nil {
		r.log.Errorw("Failed to set subscription flag in DB", "error", err, "appID", appID, "userID", userID)
		return storageErr("failed to set subscription flag", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorw("Failed to get rows affected after update", "error", err, "appID", appID, "userID", userID)
		return storageErr("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// storageErr оборачивает ошибку ввода-вывода так, чтобы она распознавалась
// через errors.Is(err, domain.ErrStorageUnavailable).
func storageErr(op string, err error) error {
	return fmt.Errorf("repository: %s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
