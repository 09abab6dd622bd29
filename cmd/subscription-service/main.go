package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/Subscription-service/internal/api/rest"
	"github.com/Dhoini/Subscription-service/internal/config"
	"github.com/Dhoini/Subscription-service/internal/db"
	"github.com/Dhoini/Subscription-service/internal/kafka"
	"github.com/Dhoini/Subscription-service/internal/metrics"
	"github.com/Dhoini/Subscription-service/internal/recaptcha"
	"github.com/Dhoini/Subscription-service/internal/repository"
	"github.com/Dhoini/Subscription-service/internal/service"
	"github.com/Dhoini/Subscription-service/internal/stripe"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не создан, уровень неизвестен
		fallback := logger.New(logger.INFO)
		fallback.Fatalw("Failed to load configuration", "error", err)
	}

	log := logger.New(logger.ParseLevel(cfg.App.LogLevel))
	log.Infow("Subscription service starting up...")

	if cfg.Stripe.APIKey == "" {
		log.Warnw("Stripe API Key is not set, checkout sessions will fail")
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Warnw("Stripe webhook secret is not set, webhook verification will fail")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключаемся к базе данных
	dbClient, err := db.NewDBClient(cfg.Database.DSN, log)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Errorw("Error closing database connection", "error", err)
		}
	}()
	log.Infow("Database connection established")

	baseRepo, err := repository.NewPostgresUserRepository(dbClient.DB(), log)
	if err != nil {
		log.Fatalw("Failed to initialize user repository", "error", err)
	}

	// Инициализируем Redis кеш
	userRepo := baseRepo
	redisCache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		// Не фатально, но предупреждаем
		log.Warnw("Failed to initialize Redis cache, continuing without caching", "error", err)
	} else {
		log.Infow("Redis cache initialized successfully")
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Errorw("Error closing Redis connection", "error", err)
			}
		}()
		userRepo = repository.NewCachedUserRepository(baseRepo, redisCache, log)
	}

	// Инициализируем Kafka Producer
	var kafkaProducer kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		if err := kafka.EnsureKafkaTopics(cfg.Kafka.Brokers, log); err != nil {
			log.Warnw("Failed to ensure Kafka topics", "error", err)
		}
		kafkaProducer, err = kafka.NewKafkaProducer(cfg.Kafka.Brokers, log)
		if err != nil {
			log.Errorw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
			kafkaProducer = nil
		} else {
			defer func() {
				if err := kafkaProducer.Close(); err != nil {
					log.Errorw("Error closing Kafka producer", "error", err)
				}
			}()
		}
	} else {
		log.Warnw("Kafka brokers are not configured, event publishing disabled")
	}

	// Инициализируем клиент Stripe
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, stripe.CheckoutConfig{
		ProductName: cfg.Stripe.ProductName,
		UnitAmount:  cfg.Stripe.UnitAmount,
		Currency:    cfg.Stripe.Currency,
		SuccessURL:  cfg.Stripe.SuccessURL,
		CancelURL:   cfg.Stripe.CancelURL,
	}, log)

	// Метрики
	registry := prometheus.NewRegistry()
	subscriptionMetrics := metrics.NewSubscriptionMetrics(registry)

	// Инициализируем service layer
	subscriptionService := service.NewSubscriptionService(userRepo, kafkaProducer, subscriptionMetrics, log)
	checkoutService := service.NewCheckoutService(userRepo, stripeClient, subscriptionMetrics, log)
	webhookService := service.NewWebhookService(subscriptionService, subscriptionMetrics, log)
	recaptchaVerifier := recaptcha.NewVerifier(cfg.Recaptcha.SecretKey, log)

	// Инициализируем HTTP сервер с роутами
	router := rest.SetupRouter(log, registry, cfg, rest.Services{
		Subscriptions: subscriptionService,
		Checkout:      checkoutService,
		Webhooks:      webhookService,
		Recaptcha:     recaptchaVerifier,
		Metrics:       subscriptionMetrics,
	})
	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}

	log.Infow("Subscription service stopped")
}
