package recaptcha

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://www.google.com"
	verifyPath     = "/recaptcha/api/siteverify"
)

// Result представляет результат проверки reCAPTCHA токена.
type Result struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
}

// Verifier определяет метод проверки reCAPTCHA токена.
type Verifier interface {
	// Verify проверяет клиентский токен через siteverify endpoint.
	Verify(ctx context.Context, token string) (*Result, error)
}

// siteverifyResponse - формат ответа Google siteverify API.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// googleVerifier реализует Verifier через HTTP вызов к Google.
type googleVerifier struct {
	client    *resty.Client
	secretKey string
	log       *logger.Logger
}

// NewVerifier создает новый верификатор reCAPTCHA.
func NewVerifier(secretKey string, log *logger.Logger) Verifier {
	return NewVerifierWithBaseURL(secretKey, defaultBaseURL, log)
}

// NewVerifierWithBaseURL создает верификатор с нестандартным базовым URL
// (используется в тестах).
func NewVerifierWithBaseURL(secretKey, baseURL string, log *logger.Logger) Verifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)

	return &googleVerifier{
		client:    client,
		secretKey: secretKey,
		log:       log,
	}
}

// Verify проверяет клиентский токен через siteverify endpoint.
func (v *googleVerifier) Verify(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, fmt.Errorf("recaptcha: empty token: %w", domain.ErrInvalidInput)
	}

	var body siteverifyResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"secret":   v.secretKey,
			"response": token,
		}).
		SetResult(&body).
		Post(verifyPath)
	if err != nil {
		v.log.Errorw("reCAPTCHA verification request failed", "error", err)
		return nil, fmt.Errorf("recaptcha: siteverify request failed: %w: %w", domain.ErrUpstreamService, err)
	}
	if resp.IsError() {
		v.log.Errorw("reCAPTCHA siteverify returned error status", "status", resp.StatusCode())
		return nil, fmt.Errorf("recaptcha: siteverify returned status %d: %w", resp.StatusCode(), domain.ErrUpstreamService)
	}

	if len(body.ErrorCodes) > 0 {
		// Коды ошибок вроде invalid-input-response означают плохой токен,
		// а не отказ сервиса - отдаем их как неуспешную проверку
		v.log.Warnw("reCAPTCHA verification rejected", "errorCodes", body.ErrorCodes)
	}

	return &Result{Success: body.Success, Score: body.Score}, nil
}
