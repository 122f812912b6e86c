package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisFeed publishes and subscribes change events over Redis Pub/Sub on
// one channel per table.
type RedisFeed struct {
	client *redis.Client
	prefix string
	buffer int
	logger zerolog.Logger
}

func NewRedisFeed(opts *redis.Options, prefix string, buffer int, logger zerolog.Logger) (*RedisFeed, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger = logger.With().Str("component", "redis_feed").Logger()
	logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

	return &RedisFeed{
		client: client,
		prefix: prefix,
		buffer: buffer,
		logger: logger,
	}, nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, table string) (Subscription, error) {
	channel := channelName(f.prefix, ":", table)

	pubsub := f.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	logger := f.logger.With().Str("channel", channel).Logger()
	msgs := pubsub.Channel()

	sub, subCtx := newSubscription(ctx, f.buffer, pubsub.Close)

	sub.run(func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn().Msg("Redis subscription channel closed")
					return
				}
				evt, err := DecodeEvent([]byte(msg.Payload))
				if err != nil {
					logger.Error().Err(err).Msg("Dropping malformed message")
					continue
				}
				if !sub.emit(subCtx, evt) {
					return
				}
			}
		}
	})

	logger.Info().Msg("Subscribed to Redis channel")
	return sub, nil
}

func (f *RedisFeed) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return f.client.Publish(ctx, channelName(f.prefix, ":", evt.Table), body).Err()
}

func (f *RedisFeed) Close() error {
	return f.client.Close()
}
