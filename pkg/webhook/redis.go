package webhook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// defaultChannelPrefix namespaces the pub/sub channels the RedisBus writes to.
const defaultChannelPrefix = "flow:webhooks"

// RedisBusOption configures a RedisBus.
type RedisBusOption func(*RedisBus)

// WithChannelPrefix overrides the pub/sub channel prefix.
func WithChannelPrefix(prefix string) RedisBusOption {
	return func(b *RedisBus) {
		if prefix != "" {
			b.prefix = prefix
		}
	}
}

// RedisPublisher is the slice of the redis client the bus writes through.
// Satisfied by *redis.Client, *redis.ClusterClient and redis.UniversalClient.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisBus publishes events to Redis pub/sub so consumers outside this
// process can react to resolved notifications. Each event type gets its own
// channel: <prefix>:<event type>. Delivery is fire-and-forget pub/sub;
// consumers that need durability should bridge to a queue on their side.
type RedisBus struct {
	client RedisPublisher
	prefix string
}

// NewRedisBus creates a RedisBus. Panics on a nil client to fail fast.
func NewRedisBus(client RedisPublisher, opts ...RedisBusOption) *RedisBus {
	if client == nil {
		panic("webhook: redis client is required")
	}
	b := &RedisBus{
		client: client,
		prefix: defaultChannelPrefix,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish JSON-encodes the event envelope and publishes it to the event
// type's channel.
func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	if err := b.client.Publish(ctx, b.Channel(event.Type), payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Channel returns the pub/sub channel name for an event type, for consumers
// that subscribe on the other side.
func (b *RedisBus) Channel(t EventType) string {
	return b.prefix + ":" + string(t)
}
