// Package logging wires up the driver's structured logger, the same
// way ws/internal/shared/monitoring/logger.go configures zerolog for
// odin-ws-server: JSON unless the console format is asked for, a pretty
// console writer for local development, timestamps always on (caller
// info is not recorded).
package logging

import (
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the logger's output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// New builds a zerolog.Logger at the given level/format, tagged with
// service="chanx-driver" so log aggregation can tell it apart from
// whatever else shares a host.
func New(level string, format Format) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out = os.Stdout
	logger := zerolog.New(out)
	if format == FormatConsole {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger.With().
		Timestamp().
		Str("service", "chanx-driver").
		Logger()
}

// RecoverAndLog sits in a deferred call at the top of each producer,
// consumer, and select goroutine the driver's runtime spawns (the feed
// bridges and the TUI loop do not defer it): it logs a recovered panic
// with a stack trace
// instead of letting it crash the process silently, the pattern
// ws/worker_pool.go's worker() uses around each task.
func RecoverAndLog(logger zerolog.Logger, component string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic_value", r).
			Str("component", component).
			Str("stack_trace", string(debug.Stack())).
			Msg("recovered from panic")
	}
}
