package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	clog "charm.land/log/v2"
	"github.com/spf13/cobra"

	"github.com/chanlab/chanx/internal/metrics"
	"github.com/chanlab/chanx/internal/tui"
	"github.com/chanlab/chanx/internal/workload"
)

// tuiSource adapts a runtime's live channels to tui.Source.
type tuiSource struct {
	rt *runtime
}

func (s tuiSource) Snapshot() []tui.Row {
	rows := make([]tui.Row, 0, len(s.rt.channels))
	for name, ch := range s.rt.channels {
		rows = append(rows, tui.Row{Name: name, Stats: ch.Stats()})
	}
	return rows
}

func newWatchCmd() *cobra.Command {
	var scenarioPath string
	var debugLogPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a scenario with a live terminal dashboard",
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

			go func() {
				if err := rt.run(ctx); err != nil {
					logger.Error().Err(err).Msg("watch: scenario run failed")
				}
			}()

			var debug *clog.Logger
			if debugLogPath != "" {
				f, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				debug = clog.New(f)
				debug.SetLevel(clog.DebugLevel)
			}

			model := tui.New(tuiSource{rt: rt}, 250*time.Millisecond, debug)
			program := tea.NewProgram(model)
			_, err = program.Run()
			stop()
			return err
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to a scenario YAML file (overrides CHANX_SCENARIO_FILE)")
	cmd.Flags().StringVar(&debugLogPath, "debug-log", "", "write TUI debug events to this file (stdout is owned by the dashboard)")

	return cmd
}
