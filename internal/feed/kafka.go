package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultKafkaTopic is the topic the decoder bridge produces to.
const DefaultKafkaTopic = "metapanel.metadata"

// KafkaConfig selects the brokers, topic and consumer group.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// KafkaSource consumes one record per event. Records of one partition are
// delivered in offset order; the topic should be single-partition (or keyed
// by receiver) to keep the arrival order the panels rely on.
type KafkaSource struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type KafkaOption func(*KafkaSource)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(s *KafkaSource) {
		s.logger = logger
	}
}

func NewKafkaSource(cfg KafkaConfig, opts ...KafkaOption) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultKafkaTopic
	}
	kopts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	}
	if cfg.Group != "" {
		kopts = append(kopts, kgo.ConsumerGroup(cfg.Group))
	}
	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	s := &KafkaSource{
		client: client,
		topic:  cfg.Topic,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *KafkaSource) Run(ctx context.Context, sink Sink) error {
	source := "kafka:" + s.topic
	for {
		fetches := s.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Warn("kafka fetch failed", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(r *kgo.Record) {
			deliver(s.logger, source, r.Value, sink)
		})
	}
}

// Ping checks that a broker answers.
func (s *KafkaSource) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close leaves the consumer group and closes the client.
func (s *KafkaSource) Close() {
	s.client.Close()
}
