package main

import (
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chanlab/chanx"
	"github.com/chanlab/chanx/internal/feeds/kafkafeed"
	"github.com/chanlab/chanx/internal/feeds/natsfeed"
	"github.com/chanlab/chanx/internal/metrics"
	"github.com/chanlab/chanx/internal/observe"
	"github.com/chanlab/chanx/internal/ratelimit"
	"github.com/chanlab/chanx/internal/workload"
)

func newServeCmd() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a scenario (optionally bridging NATS/Kafka feeds) behind a metrics and stats-stream server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := loadStartupConfig()
			if err != nil {
				return err
			}
			logger := newDriverLogger(cfg.LogLevel, format)

			m := metrics.New()

			var rt *runtime
			path := scenarioPath
			if path == "" {
				path = cfg.ScenarioFile
			}
			if path != "" {
				scenario, err := workload.Load(path)
				if err != nil {
					return err
				}
				rt, err = newRuntime(scenario, m, logger)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)

			var feedTarget *chanx.Channel[[]byte]
			if cfg.NATSURL != "" || cfg.KafkaBrokers != "" {
				feedTarget, err = chanx.Create[[]byte](4096)
				if err != nil {
					return err
				}
			}

			if cfg.NATSURL != "" && cfg.NATSSubject != "" {
				guard := ratelimit.New(cfg.MaxProduceRate)
				feed, err := natsfeed.Connect(natsfeed.Config{
					URL:             cfg.NATSURL,
					Subject:         cfg.NATSSubject,
					MaxReconnects:   -1,
					ReconnectWait:   time.Second,
					ReconnectJitter: 250 * time.Millisecond,
				}, feedTarget, guard, logger, func() { m.FeedDropped.WithLabelValues("nats").Inc() })
				if err != nil {
					return err
				}
				g.Go(func() error {
					<-ctx.Done()
					return feed.Close(ctx)
				})
			}

			if cfg.KafkaBrokers != "" && cfg.KafkaTopic != "" {
				guard := ratelimit.New(cfg.MaxProduceRate)
				feed, err := kafkafeed.New(kafkafeed.Config{
					Brokers:       splitCSV(cfg.KafkaBrokers),
					ConsumerGroup: "chanx-driver",
					Topics:        []string{cfg.KafkaTopic},
				}, feedTarget, guard, logger, func() { m.FeedDropped.WithLabelValues("kafka").Inc() })
				if err != nil {
					return err
				}
				g.Go(func() error {
					feed.Run(ctx)
					feed.Close()
					return nil
				})
			}

			if rt != nil {
				g.Go(func() error { return rt.run(ctx) })
				g.Go(func() error { rt.reportLoop(ctx, cfg.MetricsTick); return nil })
			}

			tokens := observe.NewTokenManager(cfg.JWTSecret, cfg.JWTTokenTTL)
			server := observe.NewServer(cfg.ObserveAddr, tokens, logger)

			g.Go(func() error {
				var watched []observe.Watched
				if rt != nil {
					for name, ch := range rt.channels {
						watched = append(watched, observe.Watched{Name: name, Ch: ch})
					}
				}
				return server.Run(ctx, watched, cfg.MetricsTick)
			})

			logger.Info().Str("addr", cfg.ObserveAddr).Msg("serve: listening")
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to a scenario YAML file (overrides CHANX_SCENARIO_FILE)")

	return cmd
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
