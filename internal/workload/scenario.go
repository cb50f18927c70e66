// Package workload describes chanx-driver scenarios as data instead of
// flags: a named set of channels, producers, consumers, and select
// stages, loaded from YAML with goccy/go-yaml. odin-ws-server has no
// equivalent DSL (its workload is implicit in its NATS/Kafka
// subscriptions); this is grounded on MacroPower-x's use of
// goccy/go-yaml for structured configuration, applied to describe a
// repeatable load/test scenario instead of app config.
package workload

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// ChannelSpec declares one named channel the scenario will create.
type ChannelSpec struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

// ProducerSpec declares a goroutine that sends Count values (or
// forever, if Count is 0) onto Channel at up to RatePerSec per second.
type ProducerSpec struct {
	Channel    string `yaml:"channel"`
	Count      int    `yaml:"count"`
	RatePerSec int    `yaml:"rate_per_sec"`
}

// ConsumerSpec is the receiving mirror of ProducerSpec.
type ConsumerSpec struct {
	Channel    string `yaml:"channel"`
	Count      int    `yaml:"count"`
	RatePerSec int    `yaml:"rate_per_sec"`
}

// SelectSpec declares a goroutine that repeatedly Selects across
// Channels (by name, in the given order) Count times.
type SelectSpec struct {
	Channels []string `yaml:"channels"`
	Count    int      `yaml:"count"`
}

// Scenario is the full, declarative description of one driver run.
type Scenario struct {
	Name      string         `yaml:"name"`
	Channels  []ChannelSpec  `yaml:"channels"`
	Producers []ProducerSpec `yaml:"producers"`
	Consumers []ConsumerSpec `yaml:"consumers"`
	Selects   []SelectSpec   `yaml:"selects"`
}

// Load parses a scenario file from disk.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %q: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", path, err)
	}
	return &s, nil
}

// Validate checks that every producer/consumer/select references a
// channel actually declared in the scenario, and that capacities are
// usable (capacity 0 is rejected by chanx.Create itself, but failing
// fast here gives a better error message).
func (s *Scenario) Validate() error {
	names := make(map[string]bool, len(s.Channels))
	for _, c := range s.Channels {
		if c.Name == "" {
			return fmt.Errorf("channel with empty name")
		}
		if names[c.Name] {
			return fmt.Errorf("duplicate channel name %q", c.Name)
		}
		if c.Capacity < 1 {
			return fmt.Errorf("channel %q: capacity must be >= 1, got %d", c.Name, c.Capacity)
		}
		names[c.Name] = true
	}
	for _, p := range s.Producers {
		if !names[p.Channel] {
			return fmt.Errorf("producer references unknown channel %q", p.Channel)
		}
	}
	for _, c := range s.Consumers {
		if !names[c.Channel] {
			return fmt.Errorf("consumer references unknown channel %q", c.Channel)
		}
	}
	for _, sel := range s.Selects {
		if len(sel.Channels) == 0 {
			return fmt.Errorf("select stage with no channels")
		}
		for _, ch := range sel.Channels {
			if !names[ch] {
				return fmt.Errorf("select references unknown channel %q", ch)
			}
		}
	}
	return nil
}
