package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/Subscription-service/pkg/logger"

	kafkaGo "github.com/segmentio/kafka-go"
)

// EnsureKafkaTopics проверяет и создает необходимые топики Kafka.
func EnsureKafkaTopics(brokers []string, log *logger.Logger) error {
	requiredTopics := map[string]kafkaGo.TopicConfig{
		TopicUserCreated: {
			Topic:             TopicUserCreated,
			NumPartitions:     3,
			ReplicationFactor: 1,
		},
		TopicSubscriptionActivated: {
			Topic:             TopicSubscriptionActivated,
			NumPartitions:     3,
			ReplicationFactor: 1,
		},
	}

	if len(brokers) == 0 || brokers[0] == "" {
		log.Errorw("Kafka broker address is empty")
		return errors.New("kafka broker address is empty")
	}

	log.Infow("Ensuring Kafka topics exist...", "topics", topicNames(requiredTopics))

	connCtx, cancelConn := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelConn()

	// DialLeader находит контроллер, пригодный для админских операций
	conn, err := kafkaGo.DialLeader(connCtx, "tcp", brokers[0], "", 0)
	if err != nil {
		log.Errorw("Failed to connect to Kafka broker for topic creation", "broker", brokers[0], "error", err)
		return fmt.Errorf("kafka: connection failed: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		log.Errorw("Failed to read partitions from Kafka", "error", err)
		return fmt.Errorf("kafka: read partitions failed: %w", err)
	}

	existingTopics := make(map[string]bool)
	for _, p := range partitions {
		existingTopics[p.Topic] = true
	}

	var topicsToCreate []kafkaGo.TopicConfig
	for topicName, config := range requiredTopics {
		if !existingTopics[topicName] {
			topicsToCreate = append(topicsToCreate, config)
		}
	}

	if len(topicsToCreate) == 0 {
		log.Infow("All required topics already exist")
		return nil
	}

	if err := conn.CreateTopics(topicsToCreate...); err != nil {
		// Гонка с другим инстансом при создании топика не является ошибкой
		if errors.Is(err, kafkaGo.TopicAlreadyExists) {
			log.Warnw("One or more topics already existed during creation attempt")
			return nil
		}
		log.Errorw("Failed to create topics", "error", err)
		return fmt.Errorf("kafka: create topics failed: %w", err)
	}

	log.Infow("Successfully created topics", "count", len(topicsToCreate))
	return nil
}

func topicNames(topicMap map[string]kafkaGo.TopicConfig) []string {
	names := make([]string, 0, len(topicMap))
	for name := range topicMap {
		names = append(names, name)
	}
	return names
}
