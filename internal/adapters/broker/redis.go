package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"eventteams/internal/domain"
)

// redisClient is the part of *redis.Client the publisher uses.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

type redisPublisher struct {
	client redisClient
	prefix string
}

// NewRedisPublisher publishes each notification on the channel prefix+userID, for realtime push to connected clients.
func NewRedisPublisher(addr, prefix string) (domain.NotificationPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &redisPublisher{client: client, prefix: prefix}, nil
}

// Channel returns the pub/sub channel a user's notifications are published on.
func (p *redisPublisher) Channel(userID string) string {
	return p.prefix + userID
}

func (p *redisPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	body, err := encode(n)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.Channel(n.UserID), body).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}
