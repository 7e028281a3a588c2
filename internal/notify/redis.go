package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/octobees/rentroom/api/internal/entity"
)

// DefaultChannelPrefix is prepended to the user id to form the channel name.
const DefaultChannelPrefix = "notifications.user."

// RedisBroadcaster publishes notifications on a per-user Redis channel.
type RedisBroadcaster struct {
	client *redis.Client
	prefix string
}

// NewRedisBroadcaster parses url (redis://...) and returns a broadcaster
// publishing on prefix+<user id>.
func NewRedisBroadcaster(url, prefix string) (*RedisBroadcaster, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisBroadcasterWithClient(redis.NewClient(opts), prefix), nil
}

func NewRedisBroadcasterWithClient(client *redis.Client, prefix string) *RedisBroadcaster {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisBroadcaster{client: client, prefix: prefix}
}

// Channel returns the channel name for a user.
func (b *RedisBroadcaster) Channel(userID string) string {
	return b.prefix + userID
}

// Broadcast publishes n as JSON.
func (b *RedisBroadcaster) Broadcast(ctx context.Context, n entity.Notification) error {
	payload, err := json.Marshal(NewMessage(n))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := b.client.Publish(ctx, b.Channel(n.UserID.String()), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (b *RedisBroadcaster) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBroadcaster) Close() error {
	return b.client.Close()
}

var _ Broadcaster = (*RedisBroadcaster)(nil)
