// Package broker publishes persisted notifications to an external message broker.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventteams/internal/domain"
)

// Brokers understood by NOTIFY_BROKER.
const (
	KindNone  = "none"
	KindAMQP  = "amqp"
	KindKafka = "kafka"
	KindRedis = "redis"
)

// Config selects and configures the broker.
type Config struct {
	Kind string

	AMQPURL   string
	AMQPQueue string

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr          string
	RedisChannelPrefix string
}

// NewPublisher creates a publisher from config. "none" or an unknown kind yields a no-op publisher.
func NewPublisher(cfg Config, logger *slog.Logger) (domain.NotificationPublisher, error) {
	switch cfg.Kind {
	case KindAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
	case KindKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case KindRedis:
		return NewRedisPublisher(cfg.RedisAddr, cfg.RedisChannelPrefix)
	case KindNone, "":
		return noopPublisher{}, nil
	default:
		logger.Warn("unknown notification broker, using noop", "broker", cfg.Kind)
		return noopPublisher{}, nil
	}
}

// message is the wire form shared by every broker.
type message struct {
	ID         string                  `json:"id"`
	UserID     string                  `json:"user_id"`
	FromUserID *string                 `json:"from_user_id,omitempty"`
	Type       domain.NotificationType `json:"type"`
	Message    string                  `json:"message"`
	Link       *string                 `json:"link,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

func encode(n *domain.Notification) ([]byte, error) {
	body, err := json.Marshal(message{
		ID:         n.ID,
		UserID:     n.UserID,
		FromUserID: n.FromUserID,
		Type:       n.Type,
		Message:    n.Message,
		Link:       n.Link,
		CreatedAt:  n.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return body, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, _ *domain.Notification) error { return nil }
func (noopPublisher) Close() error                                         { return nil }
