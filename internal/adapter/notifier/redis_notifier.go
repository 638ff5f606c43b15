package notifier

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannel = "cart:notifications"
	publishTimeout = time.Second
)

// RedisNotifier publishes notifications on a pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(message string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := n.client.Publish(ctx, n.channel, message).Err(); err != nil {
		log.Printf("publish notification failed: %v", err)
	}
}
