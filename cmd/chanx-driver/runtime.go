// Command chanx-driver exercises the chanx library against declarative
// scenarios, optionally bridging live NATS/Kafka feeds into it and
// exposing its running state over Prometheus/WebSocket, grounded on
// ws/main.go's config-load -> build -> run -> signal-wait shape.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chanlab/chanx"
	"github.com/chanlab/chanx/internal/logging"
	"github.com/chanlab/chanx/internal/metrics"
	"github.com/chanlab/chanx/internal/ratelimit"
	"github.com/chanlab/chanx/internal/workload"
)

// runtime owns every channel a scenario declares plus the goroutines
// driving its producers, consumers, and select stages.
type runtime struct {
	scenario *workload.Scenario
	channels map[string]*chanx.Channel[int]
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func newRuntime(s *workload.Scenario, m *metrics.Metrics, logger zerolog.Logger) (*runtime, error) {
	channels := make(map[string]*chanx.Channel[int], len(s.Channels))
	for _, cs := range s.Channels {
		ch, err := chanx.Create[int](cs.Capacity)
		if err != nil {
			return nil, fmt.Errorf("create channel %q: %w", cs.Name, err)
		}
		channels[cs.Name] = ch
	}
	return &runtime{scenario: s, channels: channels, metrics: m, logger: logger}, nil
}

// statsRows builds a snapshot of every channel for the TUI/observability surface.
func (rt *runtime) statsRows() []statRow {
	rows := make([]statRow, 0, len(rt.channels))
	for name, ch := range rt.channels {
		rows = append(rows, statRow{Name: name, Stats: ch.Stats()})
	}
	return rows
}

type statRow struct {
	Name string
	chanx.Stats
}

// run drives every producer/consumer/select goroutine the scenario
// declares until ctx is cancelled or every finite-count stage
// completes.
func (rt *runtime) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, p := range rt.scenario.Producers {
		p := p
		ch := rt.channels[p.Channel]
		g.Go(func() error {
			defer logging.RecoverAndLog(rt.logger, "producer:"+p.Channel)
			return rt.runProducer(ctx, p, ch)
		})
	}

	for _, c := range rt.scenario.Consumers {
		c := c
		ch := rt.channels[c.Channel]
		g.Go(func() error {
			defer logging.RecoverAndLog(rt.logger, "consumer:"+c.Channel)
			return rt.runConsumer(ctx, c, ch)
		})
	}

	for i, s := range rt.scenario.Selects {
		s := s
		idx := i
		g.Go(func() error {
			defer logging.RecoverAndLog(rt.logger, fmt.Sprintf("select:%d", idx))
			return rt.runSelect(ctx, s)
		})
	}

	return g.Wait()
}

func (rt *runtime) runProducer(ctx context.Context, p workload.ProducerSpec, ch *chanx.Channel[int]) error {
	guard := ratelimit.New(p.RatePerSec)
	sent := 0
	for p.Count == 0 || sent < p.Count {
		if err := guard.Wait(ctx); err != nil {
			return nil
		}
		status, err := ch.Send(rand.Int())
		label := rt.metrics.SendsTotal.WithLabelValues(p.Channel, status.String())
		label.Inc()
		if status == chanx.ClosedError {
			return nil
		}
		if err != nil && status != chanx.Success {
			rt.logger.Warn().Err(err).Str("channel", p.Channel).Msg("producer send failed")
		}
		sent++
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
	return nil
}

func (rt *runtime) runConsumer(ctx context.Context, c workload.ConsumerSpec, ch *chanx.Channel[int]) error {
	guard := ratelimit.New(c.RatePerSec)
	received := 0
	for c.Count == 0 || received < c.Count {
		if err := guard.Wait(ctx); err != nil {
			return nil
		}
		var v int
		status, err := ch.Receive(&v)
		rt.metrics.ReceivesTotal.WithLabelValues(c.Channel, status.String()).Inc()
		if status == chanx.ClosedError {
			return nil
		}
		if err != nil && status != chanx.Success {
			rt.logger.Warn().Err(err).Str("channel", c.Channel).Msg("consumer receive failed")
		}
		received++
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
	return nil
}

func (rt *runtime) runSelect(ctx context.Context, s workload.SelectSpec) error {
	cases := make([]chanx.Case, 0, len(s.Channels))
	for _, name := range s.Channels {
		var v int
		cases = append(cases, chanx.Recv(rt.channels[name], &v))
	}

	done := 0
	for s.Count == 0 || done < s.Count {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		start := time.Now()
		_, status, err := chanx.Select(cases...)
		rt.metrics.SelectsTotal.Inc()
		rt.metrics.SelectLatency.Observe(time.Since(start).Seconds())
		if status == chanx.ClosedError {
			return nil
		}
		if err != nil && status != chanx.Success {
			rt.logger.Warn().Err(err).Msg("select failed")
		}
		done++
	}
	return nil
}

// reportLoop pushes every channel's current stats into Prometheus on
// a tick, until ctx is done.
func (rt *runtime) reportLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for name, ch := range rt.channels {
				rt.metrics.Report(name, statsAdapter{ch})
			}
		}
	}
}

// statsAdapter narrows a *chanx.Channel[int] to the
// metrics.ObservedChannel interface without that package importing
// chanx directly (it stays collection-strategy agnostic).
type statsAdapter struct {
	ch *chanx.Channel[int]
}

func (a statsAdapter) StatsSnapshot() (items, slots, subscribers int, closed bool) {
	st := a.ch.Stats()
	return st.ItemCount, st.SlotCount, st.Subscribers, st.Closed
}
