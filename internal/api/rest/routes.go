package rest

import (
	"github.com/Dhoini/Subscription-service/internal/api/rest/handlers"
	"github.com/Dhoini/Subscription-service/internal/api/rest/middleware"
	"github.com/Dhoini/Subscription-service/internal/config"
	"github.com/Dhoini/Subscription-service/internal/metrics"
	"github.com/Dhoini/Subscription-service/internal/recaptcha"
	"github.com/Dhoini/Subscription-service/internal/service"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services содержит сервисы, необходимые HTTP-слою
type Services struct {
	Subscriptions service.SubscriptionService
	Checkout      service.CheckoutService
	Webhooks      service.WebhookService
	Recaptcha     recaptcha.Verifier
	Metrics       metrics.SubscriptionMetrics
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, cfg *config.Config, svcs Services) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Инициализация обработчиков
	userHandler := handlers.NewUserHandler(svcs.Subscriptions, log)
	checkoutHandler := handlers.NewCheckoutHandler(svcs.Checkout, log)
	webhookHandler := handlers.NewWebhookHandler(svcs.Webhooks, cfg.Stripe.WebhookSecret, log)
	recaptchaHandler := handlers.NewRecaptchaHandler(svcs.Recaptcha, svcs.Metrics, log)

	// Пользователи и статус подписки
	users := r.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("/:id/subscription", userHandler.GetSubscription)
		users.POST("/:id/subscription", userHandler.SetSubscription)
	}

	// Платежи
	r.POST("/create-checkout-session", checkoutHandler.CreateCheckoutSession)
	r.POST("/stripe-webhook", webhookHandler.HandleStripeWebhook)

	// Защита от ботов
	r.POST("/verify-recaptcha", recaptchaHandler.VerifyRecaptcha)

	return r
}
