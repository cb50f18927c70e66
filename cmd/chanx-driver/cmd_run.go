package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chanlab/chanx/internal/metrics"
	"github.com/chanlab/chanx/internal/workload"
)

func newRunCmd() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a workload scenario until it completes or is interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := loadStartupConfig()
			if err != nil {
				return err
			}
			logger := newDriverLogger(cfg.LogLevel, format)

			path := scenarioPath
			if path == "" {
				path = cfg.ScenarioFile
			}
			if path == "" {
				return fmt.Errorf("no scenario file given: pass --scenario or set CHANX_SCENARIO_FILE")
			}

			scenario, err := workload.Load(path)
			if err != nil {
				return err
			}

			m := metrics.New()
			rt, err := newRuntime(scenario, m, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go rt.reportLoop(ctx, cfg.MetricsTick)

			logger.Info().Str("scenario", scenario.Name).Int("channels", len(scenario.Channels)).Msg("run: starting scenario")
			start := time.Now()
			if err := rt.run(ctx); err != nil {
				return err
			}
			logger.Info().Dur("elapsed", time.Since(start)).Msg("run: scenario finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to a scenario YAML file (overrides CHANX_SCENARIO_FILE)")

	return cmd
}
