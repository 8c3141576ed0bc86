package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultChannel = "relay:messages"

// Bridge carries envelopes between API instances. Every instance publishes
// sends to the bridge and delivers locally only what comes back from it, so a
// recipient connected to another instance still receives the message.
type Bridge interface {
	Publish(ctx context.Context, env Envelope) error
}

// RedisBridge is a Redis pub/sub backplane. All instances subscribe to one
// channel; each delivers to its own local sessions.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     zerolog.Logger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, log zerolog.Logger) *RedisBridge {
	if channel == "" {
		channel = defaultChannel
	}
	return &RedisBridge{client: client, channel: channel, hub: hub, log: log}
}

// Publish sends the envelope to every instance, this one included.
func (b *RedisBridge) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish envelope: %w", err)
	}
	return nil
}

// Start launches the subscription loop. It runs until ctx is cancelled.
func (b *RedisBridge) Start(ctx context.Context) {
	go b.run(ctx)
}

func (b *RedisBridge) run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
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
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Error().Err(err).Msg("malformed relay envelope")
				continue
			}
			b.hub.DeliverLocal(env)
		}
	}
}

// LocalBridge short-circuits the backplane for single-instance deployments
// and tests.
type LocalBridge struct {
	hub *Hub
}

func NewLocalBridge(hub *Hub) *LocalBridge {
	return &LocalBridge{hub: hub}
}

func (b *LocalBridge) Publish(_ context.Context, env Envelope) error {
	b.hub.DeliverLocal(env)
	return nil
}
