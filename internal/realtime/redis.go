package realtime

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBridge carries topic names over a single Redis pub/sub channel so
// that every server instance sees every change.
type RedisBridge struct {
	client  *redis.Client
	channel string
}

func NewRedisBridge(client *redis.Client, channel string) *RedisBridge {
	return &RedisBridge{client: client, channel: channel}
}

func (b *RedisBridge) Publish(ctx context.Context, topic string) error {
	return b.client.Publish(ctx, b.channel, topic).Err()
}

func (b *RedisBridge) Run(ctx context.Context, dispatch func(topic string)) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("redis subscription closed")
			}
			dispatch(msg.Payload)
		}
	}
}
