package domain

import (
	"errors"
)

// Ключи метаданных, которые мы записываем в checkout-сессию Stripe
// и ожидаем обратно в вебхуке.
const (
	MetadataUserIDKey = "userId"
	MetadataAppIDKey  = "appId"
)

// ErrMissingUserID метаданные события не содержат идентификатор пользователя
var ErrMissingUserID = errors.New("event metadata is missing userId")

// CheckoutMetadata - типизированные метаданные события checkout.session.completed.
// Заполняются при создании сессии и возвращаются Stripe в вебхуке.
type CheckoutMetadata struct {
	UserID string
	AppID  string
}

// CheckoutMetadataFromMap извлекает типизированные метаданные из нетипизированной
// карты метаданных Stripe. Отсутствующий userId - это ошибка целостности данных,
// отсутствующий appId заменяется значением по умолчанию.
func CheckoutMetadataFromMap(metadata map[string]string) (CheckoutMetadata, error) {
	userID := metadata[MetadataUserIDKey]
	if userID == "" {
		return CheckoutMetadata{}, ErrMissingUserID
	}

	appID := metadata[MetadataAppIDKey]
	if appID == "" {
		appID = DefaultAppID
	}

	return CheckoutMetadata{UserID: userID, AppID: appID}, nil
}

// ToMap возвращает метаданные в виде карты для передачи в Stripe.
func (m CheckoutMetadata) ToMap() map[string]string {
	return map[string]string{
		MetadataUserIDKey: m.UserID,
		MetadataAppIDKey:  m.AppID,
	}
}
