package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Топики событий подписок
const (
	TopicUserCreated           = "user_created"
	TopicSubscriptionActivated = "subscription_activated"
)

// Producer определяет интерфейс для публикации сообщений в Kafka.
type Producer interface {
	// PublishSubscriptionEvent отправляет событие, связанное с записью подписки.
	// Ключ сообщения - (appID, userID), чтобы события одного пользователя
	// попадали в одну партицию и сохраняли порядок.
	PublishSubscriptionEvent(ctx context.Context, topic string, rec *domain.SubscriptionRecord) error
	// Close закрывает соединение продюсера Kafka.
	Close() error
}

// kafkaProducer реализует интерфейс Producer, используя segmentio/kafka-go.
type kafkaProducer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewKafkaProducer создает и настраивает новый продюсер Kafka.
func NewKafkaProducer(brokers []string, log *logger.Logger) (Producer, error) {
	if len(brokers) == 0 {
		log.Errorw("Kafka brokers list is empty in config, cannot create producer")
		return nil, errors.New("kafka brokers are not configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	log.Infow("Kafka producer initialized", "brokers", brokers)

	return &kafkaProducer{
		writer: writer,
		log:    log,
	}, nil
}

// PublishSubscriptionEvent преобразует запись в JSON и отправляет в указанный топик.
func (k *kafkaProducer) PublishSubscriptionEvent(ctx context.Context, topic string, rec *domain.SubscriptionRecord) error {
	messageKey := []byte(rec.AppID + ":" + rec.UserID)

	messageValue, err := json.Marshal(rec)
	if err != nil {
		k.log.Errorw("Failed to marshal subscription record for Kafka", "error", err, "userID", rec.UserID, "topic", topic)
		return fmt.Errorf("kafka: failed to marshal message data: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   messageKey,
		Value: messageValue,
		Time:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := k.writer.WriteMessages(writeCtx, message); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			k.log.Errorw("Kafka write timeout exceeded", "error", err, "topic", topic, "userID", rec.UserID)
			return fmt.Errorf("kafka: write timeout: %w", err)
		}
		k.log.Errorw("Failed to write message to Kafka", "error", err, "topic", topic, "userID", rec.UserID)
		return fmt.Errorf("kafka: failed to write message: %w", err)
	}

	k.log.Debugw("Successfully published message to Kafka", "topic", topic, "userID", rec.UserID)
	return nil
}

// Close закрывает соединение Kafka Writer.
func (k *kafkaProducer) Close() error {
	k.log.Infow("Closing Kafka producer writer...")
	if err := k.writer.Close(); err != nil {
		k.log.Errorw("Failed to close Kafka writer", "error", err)
		return fmt.Errorf("kafka: failed to close writer: %w", err)
	}
	return nil
}
