package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultChannel = "resxai:events"

// RedisNotifier relays events through a Redis channel so every server
// instance delivers them to its own observers.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	local   Notifier
	logger  *slog.Logger
}

// NewRedisNotifier relays events to local once they come back from Redis.
func NewRedisNotifier(client *redis.Client, channel string, local Notifier, logger *slog.Logger) *RedisNotifier {
	if strings.TrimSpace(channel) == "" {
		channel = defaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisNotifier{client: client, channel: channel, local: local, logger: logger}
}

// Publish sends the event to Redis. If Redis is unavailable the event is
// delivered to local observers only.
func (n *RedisNotifier) Publish(ctx context.Context, event string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := n.client.Publish(ctx, n.channel, event).Err(); err != nil {
		n.logger.Warn("redis publish failed, delivering locally", "event", event, "error", err)
		n.local.Publish(ctx, event)
	}
}

// Start subscribes to the channel and forwards received events to the local
// notifier until ctx is done. It returns once the subscription is active.
func (n *RedisNotifier) Start(ctx context.Context) error {
	sub := n.client.Subscribe(ctx, n.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				n.local.Publish(ctx, msg.Payload)
			}
		}
	}()
	return nil
}
