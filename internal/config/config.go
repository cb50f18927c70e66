// Package config loads the chanx-driver's configuration, the way
// ws/config.go loads odin-ws-server's: environment variables (with an
// optional .env file for local development) parsed into a tagged
// struct, validated once at startup.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the driver's subcommands (run/watch/serve)
// read. The core chanx package itself takes no configuration — only
// the application around it does.
type Config struct {
	// Scenario selects the workload to run; see internal/workload.
	ScenarioFile string `env:"CHANX_SCENARIO_FILE" envDefault:""`

	// Rate limiting. MaxProduceRate caps each NATS/Kafka feed bridge;
	// synthetic producers and consumers use their scenario entry's
	// rate_per_sec instead. MaxConsumeRate is validated but not read by
	// any subcommand.
	MaxProduceRate int `env:"CHANX_MAX_PRODUCE_RATE" envDefault:"1000"`
	MaxConsumeRate int `env:"CHANX_MAX_CONSUME_RATE" envDefault:"1000"`

	// NATS workload feed.
	NATSURL     string `env:"CHANX_NATS_URL" envDefault:""`
	NATSSubject string `env:"CHANX_NATS_SUBJECT" envDefault:""`

	// Kafka workload feed.
	KafkaBrokers string `env:"CHANX_KAFKA_BROKERS" envDefault:""`
	KafkaTopic   string `env:"CHANX_KAFKA_TOPIC" envDefault:""`

	// Observability server (serve subcommand).
	ObserveAddr    string        `env:"CHANX_OBSERVE_ADDR" envDefault:":8090"`
	JWTSecret      string        `env:"CHANX_JWT_SECRET" envDefault:"development-only-secret"`
	JWTTokenTTL    time.Duration `env:"CHANX_JWT_TTL" envDefault:"1h"`
	MetricsTick    time.Duration `env:"CHANX_METRICS_TICK" envDefault:"2s"`

	// Logging.
	LogLevel  string `env:"CHANX_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CHANX_LOG_FORMAT" envDefault:"console"`
}

// Load reads .env (if present) then the process environment into a
// validated Config. Priority: real env vars > .env file > struct
// defaults, matching ws/config.go's LoadConfig.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Absence of a .env file is not an error: production runs off
		// real environment variables only.
		_ = err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings that would make the driver misbehave
// rather than simply do nothing (e.g. a negative rate).
func (c *Config) Validate() error {
	if c.MaxProduceRate <= 0 {
		return fmt.Errorf("CHANX_MAX_PRODUCE_RATE must be > 0, got %d", c.MaxProduceRate)
	}
	if c.MaxConsumeRate <= 0 {
		return fmt.Errorf("CHANX_MAX_CONSUME_RATE must be > 0, got %d", c.MaxConsumeRate)
	}
	if c.JWTTokenTTL <= 0 {
		return fmt.Errorf("CHANX_JWT_TTL must be > 0, got %s", c.JWTTokenTTL)
	}
	return nil
}
