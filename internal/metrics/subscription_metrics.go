package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SubscriptionMetrics интерфейс для метрик сервиса подписок
type SubscriptionMetrics interface {
	IncCheckoutSessionCreated()
	IncWebhookEvent(eventType, outcome string)
	IncSubscriptionActivated()
	IncRecaptchaVerification(outcome string)
}

// Возможные исходы обработки вебхука для лейбла outcome
const (
	WebhookOutcomeProcessed = "processed"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeInvalid   = "invalid"
	WebhookOutcomeFailed    = "failed"
)

type subscriptionMetrics struct {
	checkoutSessions       prometheus.Counter
	webhookEvents          *prometheus.CounterVec
	subscriptionsActivated prometheus.Counter
	recaptchaVerifications *prometheus.CounterVec
}

// NewSubscriptionMetrics создает новые метрики сервиса подписок
func NewSubscriptionMetrics(registry *prometheus.Registry) SubscriptionMetrics {
	checkoutSessions := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_sessions_created_total",
			Help: "The total number of created Stripe checkout sessions",
		},
	)

	webhookEvents := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "The total number of received webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	subscriptionsActivated := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "The total number of subscriptions activated by payment completion",
		},
	)

	recaptchaVerifications := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "recaptcha_verifications_total",
			Help: "The total number of reCAPTCHA verifications by outcome",
		},
		[]string{"outcome"},
	)

	return &subscriptionMetrics{
		checkoutSessions:       checkoutSessions,
		webhookEvents:          webhookEvents,
		subscriptionsActivated: subscriptionsActivated,
		recaptchaVerifications: recaptchaVerifications,
	}
}

// IncCheckoutSessionCreated увеличивает счетчик созданных checkout-сессий
func (m *subscriptionMetrics) IncCheckoutSessionCreated() {
	m.checkoutSessions.Inc()
}

// IncWebhookEvent увеличивает счетчик вебхук-событий
func (m *subscriptionMetrics) IncWebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// IncSubscriptionActivated увеличивает счетчик активированных подписок
func (m *subscriptionMetrics) IncSubscriptionActivated() {
	m.subscriptionsActivated.Inc()
}

// IncRecaptchaVerification увеличивает счетчик проверок reCAPTCHA
func (m *subscriptionMetrics) IncRecaptchaVerification(outcome string) {
	m.recaptchaVerifications.WithLabelValues(outcome).Inc()
}
