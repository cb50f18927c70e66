// Package kafkafeed bridges a Kafka/Redpanda topic into a chanx
// channel, adapted from ws/internal/shared/kafka/consumer.go's
// PollFetches loop: a single-threaded poll/flush loop driven from a
// context instead of an internal WaitGroup, forwarding record values
// into chanx.Channel.TrySend instead of a websocket broadcast.
package kafkafeed

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/chanlab/chanx"
	"github.com/chanlab/chanx/internal/ratelimit"
)

// Config configures one topic-to-channel bridge.
type Config struct {
	Brokers       []string
	ConsumerGroup string
	Topics        []string
}

// Feed polls Topics and forwards each record's value into Target.
type Feed struct {
	client  *kgo.Client
	target  *chanx.Channel[[]byte]
	guard   *ratelimit.Guard
	logger  zerolog.Logger
	onDrop  func()
	dropped uint64
}

// New creates a Feed without starting it; call Run in its own
// goroutine once the caller is ready to consume.
func New(cfg Config, target *chanx.Channel[[]byte], guard *ratelimit.Guard, logger zerolog.Logger, onDrop func()) (*Feed, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.FetchMaxWait(500*time.Millisecond),
		kgo.SessionTimeout(30*time.Second),
		kgo.OnPartitionsAssigned(func(_ context.Context, _ *kgo.Client, assigned map[string][]int32) {
			logger.Info().Interface("partitions", assigned).Msg("kafkafeed: partitions assigned")
		}),
		kgo.OnPartitionsRevoked(func(_ context.Context, _ *kgo.Client, revoked map[string][]int32) {
			logger.Info().Interface("partitions", revoked).Msg("kafkafeed: partitions revoked")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Feed{client: client, target: target, guard: guard, logger: logger, onDrop: onDrop}, nil
}

// Run polls until ctx is done, forwarding each fetched record's value
// into target. Records that arrive faster than guard allows, or while
// target is full, are dropped and counted rather than blocking the
// poll loop behind a slow consumer.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fetches := f.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}

		for _, err := range fetches.Errors() {
			f.logger.Error().Err(err.Err).Str("topic", err.Topic).Int32("partition", err.Partition).Msg("kafkafeed: fetch error")
		}

		fetches.EachRecord(func(record *kgo.Record) {
			f.deliver(record.Value)
		})
	}
}

func (f *Feed) deliver(value []byte) {
	if !f.guard.Allow() {
		f.drop()
		return
	}
	status, err := f.target.TrySend(value)
	if status != chanx.Success {
		f.drop()
		if status != chanx.ChannelFull {
			f.logger.Error().Err(err).Msg("kafkafeed: send failed")
		}
	}
}

func (f *Feed) drop() {
	f.dropped++
	if f.onDrop != nil {
		f.onDrop()
	}
}

// Close releases the underlying Kafka client.
func (f *Feed) Close() {
	f.client.Close()
}
