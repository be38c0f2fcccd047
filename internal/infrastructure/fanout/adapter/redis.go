package adapter

import (
	"context"
	"encoding/json"
	"errors"

	redis "github.com/redis/go-redis/v9"

	"github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
)

const DefaultRedisChannel = "chat:fanout"

// RedisFanout relays room events over a single Redis pub/sub channel.
type RedisFanout struct {
	origin  string
	client  *redis.Client
	channel string
	sink    port.Sink
	log     *logger.Logger
	ready   chan struct{}
}

func NewRedisFanout(client *redis.Client, channel string, sink port.Sink, log *logger.Logger) *RedisFanout {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisFanout{
		origin:  newOrigin(),
		client:  client,
		channel: channel,
		sink:    sink,
		log:     log,
		ready:   make(chan struct{}),
	}
}

var _ port.Publisher = (*RedisFanout)(nil)

// Ready is closed once Run holds an active subscription.
func (f *RedisFanout) Ready() <-chan struct{} {
	return f.ready
}

func (f *RedisFanout) Publish(ctx context.Context, env port.Envelope) error {
	env.Origin = f.origin
	deliver(f.sink, env)

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, data).Err()
}

func (f *RedisFanout) Run(ctx context.Context) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	// The first reply confirms the subscription.
	if _, err := sub.Receive(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return err
	}
	close(f.ready)
	f.log.Info("fanout subscribed", "driver", "redis", "channel", f.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			receive(f.sink, f.origin, []byte(msg.Payload), f.log)
		}
	}
}

func (f *RedisFanout) Close() error { return nil }
