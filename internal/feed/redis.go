package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"metapanel/internal/panel"
)

// DefaultRedisChannel is the pub/sub channel the decoder bridge publishes to.
const DefaultRedisChannel = "metapanel:metadata"

// RedisSource subscribes to a pub/sub channel carrying one message per event.
type RedisSource struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

type RedisOption func(*RedisSource)

func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(s *RedisSource) {
		s.logger = logger
	}
}

func NewRedisSource(client redis.UniversalClient, channel string, opts ...RedisOption) (*RedisSource, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if channel == "" {
		channel = DefaultRedisChannel
	}
	s := &RedisSource{
		client:  client,
		channel: channel,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisSource) Run(ctx context.Context, sink Sink) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("subscribed to metadata channel", "channel", s.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription %s closed", s.channel)
			}
			deliver(s.logger, "redis:"+s.channel, []byte(msg.Payload), sink)
		}
	}
}

// Publish sends one event to channel in the client envelope.
func Publish(ctx context.Context, client redis.UniversalClient, channel string, ev panel.Event) error {
	payload, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
