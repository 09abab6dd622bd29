package domain

import (
	"time"
)

// DefaultAppID используется, когда клиент не передал идентификатор приложения
// (однотенантный режим).
const DefaultAppID = "default"

// PaymentStatusPaid - статус, выставляемый после успешного завершения оплаты.
const PaymentStatusPaid = "paid"

// SubscriptionRecord представляет собой запись о подписке пользователя.
// Ключом записи является пара (AppID, UserID).
type SubscriptionRecord struct {
	AppID           string     `json:"app_id" db:"app_id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Email           string     `json:"email,omitempty" db:"email"`
	IsSubscribed    bool       `json:"is_subscribed" db:"is_subscribed"`
	PaymentStatus   string     `json:"payment_status,omitempty" db:"payment_status"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty" db:"last_payment_date"`
	StripeSessionID string     `json:"stripe_session_id,omitempty" db:"stripe_session_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// NewSubscriptionRecord создает запись с состоянием по умолчанию (без подписки).
func NewSubscriptionRecord(appID, userID, email string) *SubscriptionRecord {
	if appID == "" {
		appID = DefaultAppID
	}
	now := time.Now()
	return &SubscriptionRecord{
		AppID:        appID,
		UserID:       userID,
		Email:        email,
		IsSubscribed: false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateUserRequest представляет запрос на создание пользователя.
type CreateUserRequest struct {
	ID    string `json:"id" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	AppID string `json:"appId,omitempty"`
}

// SetSubscriptionRequest представляет запрос на прямую установку флага подписки.
type SetSubscriptionRequest struct {
	IsSubscribed *bool  `json:"isSubscribed" validate:"required"`
	AppID        string `json:"appId,omitempty"`
}

// CreateCheckoutSessionRequest представляет запрос на создание checkout-сессии.
type CreateCheckoutSessionRequest struct {
	UserID string `json:"userId" validate:"required"`
	AppID  string `json:"appId,omitempty"`
}

// VerifyRecaptchaRequest представляет запрос на проверку reCAPTCHA токена.
type VerifyRecaptchaRequest struct {
	Token string `json:"token" validate:"required"`
}
