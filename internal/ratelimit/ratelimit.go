// Package ratelimit rate-limits the driver's synthetic and bridged
// producers/consumers, adapted from
// ws/internal/shared/limits/resource_guard.go's kafkaLimiter/
// broadcastLimiter fields: a golang.org/x/time/rate.Limiter per
// concern, with burst allowance for traffic spikes.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Guard gates a workload source's rate of calls into a chanx.Channel.
// Unlike odin-ws-server's ResourceGuard, this carries no CPU/memory
// safety-valve logic — that belongs to internal/platform — only the
// rate limiting concern.
type Guard struct {
	limiter *rate.Limiter
}

// New creates a Guard allowing perSecond events/second, with a burst
// of 2x that rate, mirroring the burst sizing comment in
// NewResourceGuard.
func New(perSecond int) *Guard {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Guard{limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond*2)}
}

// Wait blocks until the guard's limiter allows one more event, or ctx
// is done.
func (g *Guard) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Allow reports whether an event may proceed right now, without
// blocking — used by feed bridges that prefer to drop rather than
// stall on a slow consumer.
func (g *Guard) Allow() bool {
	return g.limiter.Allow()
}

// Reserve reserves one event and returns how long the caller must wait
// before acting on it (0 if the reservation is not possible); it does
// not sleep itself. Useful for metrics on feed backpressure.
func (g *Guard) Reserve() time.Duration {
	r := g.limiter.Reserve()
	if !r.OK() {
		return 0
	}
	return r.Delay()
}
