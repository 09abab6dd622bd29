package domain

import (
	"errors"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrStorageUnavailable хранилище недоступно (ошибка ввода-вывода)
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrWebhookVerificationFailed не удалось проверить подпись вебхука
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")

	// ErrUpstreamService внешний сервис (Stripe, reCAPTCHA) вернул ошибку
	ErrUpstreamService = errors.New("upstream service error")
)
