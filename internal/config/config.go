package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет структуру конфигурации для приложения.
type Config struct {
	App struct {
		Port     string `mapstructure:"port"`
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"logLevel"`
	} `mapstructure:"app"`
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Stripe struct {
		APIKey        string `mapstructure:"apiKey"`
		WebhookSecret string `mapstructure:"webhookSecret"`
		ProductName   string `mapstructure:"productName"` // Название позиции в чекауте
		UnitAmount    int64  `mapstructure:"unitAmount"`  // Цена в минимальных единицах валюты
		Currency      string `mapstructure:"currency"`
		SuccessURL    string `mapstructure:"successUrl"`
		CancelURL     string `mapstructure:"cancelUrl"`
	} `mapstructure:"stripe"`
	Recaptcha struct {
		SecretKey string `mapstructure:"secretKey"`
	} `mapstructure:"recaptcha"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// LoadConfig загружает конфигурацию из файла и переменных окружения.
func LoadConfig() (*Config, error) {
	// .env используется только локально, в production все задается окружением
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv() // Чтение переменных окружения

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.logLevel", "info")
	viper.SetDefault("stripe.productName", "Subscription")
	viper.SetDefault("stripe.unitAmount", 999)
	viper.SetDefault("stripe.currency", "usd")

	if err := viper.ReadInConfig(); err != nil {
		// Отсутствие config.yaml не фатально - конфигурация может
		// полностью приходить из переменных окружения
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal config: %w", err)
	}

	return &config, nil
}
