package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/chanlab/chanx/internal/config"
	"github.com/chanlab/chanx/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chanx-driver",
		Short: "Drives chanx channels against declarative workload scenarios",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())

	return root
}

// loadStartupConfig loads configuration and resolves the log format
// from it, the pairing every subcommand needs first; each subcommand
// then builds its logger with newDriverLogger, matching ws/main.go's
// config-then-logger bring-up order.
func loadStartupConfig() (*config.Config, logging.Format, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	format := logging.FormatConsole
	if cfg.LogFormat == "json" {
		format = logging.FormatJSON
	}
	return cfg, format, nil
}

func newDriverLogger(level string, format logging.Format) zerolog.Logger {
	return logging.New(level, format)
}
