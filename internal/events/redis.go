package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"halawa/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type envelope struct {
	Origin    string          `json:"origin"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// RedisBridge publishes events locally and on a Redis channel, and replays
// events from other processes into the local bus marked Remote. It is the
// cross-session change signal: advisory, never a lock.
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
	local   *EventBus
	retry   worker.RetryPolicy
	logger  *zerolog.Logger
}

func NewRedisBridge(client *redis.Client, channel string, local *EventBus, logger *zerolog.Logger) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   local,
		retry: worker.RetryPolicy{
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2,
		},
		logger: logger,
	}
}

// Origin identifies this process on the channel.
func (b *RedisBridge) Origin() string { return b.origin }

// PublishJSON delivers to local subscribers first, then broadcasts.
func (b *RedisBridge) PublishJSON(eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	now := time.Now()

	localErr := b.local.Publish(&Event{Type: eventType, Payload: raw, Origin: b.origin, CreatedAt: now})

	msg, err := json.Marshal(envelope{Origin: b.origin, Type: eventType, Payload: raw, CreatedAt: now})
	if err != nil {
		return err
	}
	if err := b.client.Publish(context.Background(), b.channel, msg).Err(); err != nil {
		return fmt.Errorf("broadcast %s: %w", eventType, err)
	}
	return localErr
}

// Listen forwards remote events until ctx is done, resubscribing with backoff
// when the subscription drops. ready, if non-nil, is closed once the first
// subscription is confirmed.
func (b *RedisBridge) Listen(ctx context.Context, ready chan<- struct{}) {
	attempt := 0
	for {
		err := b.listenOnce(ctx, &ready)
		if ctx.Err() != nil {
			return
		}
		attempt++
		if b.retry.Exhausted(attempt) {
			b.logger.Error().Err(err).Int("attempt", attempt).Msg("event subscription abandoned")
			return
		}
		b.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", b.retry.NextDelay(attempt)).Msg("event subscription lost")

		if b.retry.Wait(ctx, attempt) != nil {
			return
		}
	}
}

func (b *RedisBridge) listenOnce(ctx context.Context, ready *chan<- struct{}) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	if *ready != nil {
		close(*ready)
		*ready = nil
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("channel %s closed", b.channel)
			}
			b.dispatch(msg.Payload)
		}
	}
}

func (b *RedisBridge) dispatch(raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		b.logger.Warn().Err(err).Msg("drop malformed event")
		return
	}
	if env.Origin == b.origin {
		return
	}
	err := b.local.Publish(&Event{
		Type:      env.Type,
		Payload:   env.Payload,
		Origin:    env.Origin,
		Remote:    true,
		CreatedAt: env.CreatedAt,
	})
	if err != nil {
		b.logger.Error().Err(err).Str("event_type", env.Type).Msg("remote event handler failed")
	}
}
