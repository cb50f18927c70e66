// Package natsfeed bridges an external NATS subject into a chanx
// channel, adapted from go-server/pkg/nats/client.go's Subscribe: the
// same connect/reconnect option set and connection-event logging, but
// feeding chanx.Channel.TrySend instead of a websocket hub broadcast.
package natsfeed

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/chanlab/chanx"
	"github.com/chanlab/chanx/internal/ratelimit"
)

// Config configures one subject-to-channel bridge.
type Config struct {
	URL             string
	Subject         string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectJitter time.Duration
}

// Feed owns a NATS subscription whose messages are pushed into Target.
type Feed struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	target  *chanx.Channel[[]byte]
	guard   *ratelimit.Guard
	logger  zerolog.Logger
	subject string
	onDrop  func()
}

// Connect dials NATS and subscribes cfg.Subject, forwarding each
// message's payload into target via TrySend. Messages that arrive
// faster than guard allows, or while target's buffer is full, are
// dropped rather than blocking the NATS client's delivery goroutine
// (mirrors odin-ws-server's fire-and-forget handler callback, which
// never blocks on downstream backpressure either).
func Connect(cfg Config, target *chanx.Channel[[]byte], guard *ratelimit.Guard, logger zerolog.Logger, onDrop func()) (*Feed, error) {
	f := &Feed{target: target, guard: guard, logger: logger, subject: cfg.Subject, onDrop: onDrop}

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(cfg.ReconnectJitter, cfg.ReconnectJitter),
		nats.ConnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("natsfeed: connected")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("natsfeed: disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("natsfeed: reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error().Err(err).Msg("natsfeed: async error")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("natsfeed: connect: %w", err)
	}
	f.conn = conn

	sub, err := conn.Subscribe(cfg.Subject, f.handle)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("natsfeed: subscribe %q: %w", cfg.Subject, err)
	}
	f.sub = sub

	logger.Info().Str("subject", cfg.Subject).Msg("natsfeed: subscribed")
	return f, nil
}

func (f *Feed) handle(msg *nats.Msg) {
	if !f.guard.Allow() {
		f.drop()
		return
	}
	status, err := f.target.TrySend(msg.Data)
	if status != chanx.Success {
		f.drop()
		if status != chanx.ChannelFull {
			f.logger.Error().Err(err).Str("subject", f.subject).Msg("natsfeed: send failed")
		}
	}
}

func (f *Feed) drop() {
	if f.onDrop != nil {
		f.onDrop()
	}
}

// Close unsubscribes and tears down the NATS connection.
func (f *Feed) Close(ctx context.Context) error {
	if f.sub != nil {
		if err := f.sub.Unsubscribe(); err != nil {
			f.logger.Warn().Err(err).Msg("natsfeed: unsubscribe failed")
		}
	}
	if f.conn != nil {
		f.conn.Close()
	}
	return ctx.Err()
}
