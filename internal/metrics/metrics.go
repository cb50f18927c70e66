// Package metrics exposes chanx-driver's Prometheus counters and
// gauges, constructed with promauto the way
// go-server/internal/metrics/metrics.go builds odin-ws-server's.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the driver-wide set of channel-operation instrumentation.
// The chanx library itself stays metrics-free; only the application
// wrapping it (the driver, the observability server) reports these.
type Metrics struct {
	SendsTotal     *prometheus.CounterVec
	ReceivesTotal  *prometheus.CounterVec
	ClosesTotal    prometheus.Counter
	SelectsTotal   prometheus.Counter
	SelectLatency  prometheus.Histogram
	FeedDropped    *prometheus.CounterVec
	ChannelItems   *prometheus.GaugeVec
	ChannelSlots   *prometheus.GaugeVec
	Subscribers    *prometheus.GaugeVec
}

// New registers and returns a Metrics bundle against the default
// Prometheus registry, matching odin-ws-server's NewMetrics().
func New() *Metrics {
	return &Metrics{
		SendsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chanx_sends_total",
			Help: "Total Send/TrySend attempts by channel and resulting status.",
		}, []string{"channel", "status"}),
		ReceivesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chanx_receives_total",
			Help: "Total Receive/TryReceive attempts by channel and resulting status.",
		}, []string{"channel", "status"}),
		ClosesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chanx_closes_total",
			Help: "Total successful Close calls across all driver-managed channels.",
		}),
		SelectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chanx_selects_total",
			Help: "Total completed Select calls.",
		}),
		SelectLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chanx_select_latency_seconds",
			Help:    "Time a Select call spent blocked before completing.",
			Buckets: prometheus.DefBuckets,
		}),
		FeedDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chanx_feed_dropped_total",
			Help: "Messages dropped by a workload feed bridge (rate limited or channel full).",
		}, []string{"feed"}),
		ChannelItems: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chanx_channel_items",
			Help: "Current buffered item count per named channel.",
		}, []string{"channel"}),
		ChannelSlots: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chanx_channel_slots_free",
			Help: "Current free slot count per named channel.",
		}, []string{"channel"}),
		Subscribers: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chanx_channel_subscribers",
			Help: "Current number of live select subscribers per named channel.",
		}, []string{"channel"}),
	}
}

// ObservedChannel is the subset of chanx.Channel[T].Stats() the
// metrics reporter needs; kept as an interface so this package does
// not import a concrete element type.
type ObservedChannel interface {
	StatsSnapshot() (items, slots, subscribers int, closed bool)
}

// Report pushes one channel's current stats into the gauges, keyed by
// name. Called on a tick by the driver's runtime reportLoop; the
// observability server's stats stream does not call it.
func (m *Metrics) Report(name string, ch ObservedChannel) {
	items, slots, subs, _ := ch.StatsSnapshot()
	m.ChannelItems.WithLabelValues(name).Set(float64(items))
	m.ChannelSlots.WithLabelValues(name).Set(float64(slots))
	m.Subscribers.WithLabelValues(name).Set(float64(subs))
}
