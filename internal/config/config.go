package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling from strings.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses duration strings like "500ms" or "1s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return fmt.Errorf("duration value node is nil")
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decode duration: %w", err)
	}
	if raw == "" {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = dur
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// LokiConfig configures optional Loki integration for logging.
type LokiConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Labels  map[string]string `yaml:"labels"`
}

// LoggingConfig encapsulates runtime logging options.
type LoggingConfig struct {
	Level  string     `yaml:"level"`
	Format string     `yaml:"format"`
	Loki   LokiConfig `yaml:"loki"`
}

// SimConfig seeds the simulated machine backend.
type SimConfig struct {
	WarmerPlate string `yaml:"warmer_plate"`
	Boiler      string `yaml:"boiler"`
}

// GPIOPins assigns BCM line offsets to the machine's sensors and actuators.
type GPIOPins struct {
	WarmerPlate  int `yaml:"warmer_plate"`
	Boiler       int `yaml:"boiler"`
	BrewButton   int `yaml:"brew_button"`
	BoilerHeater int `yaml:"boiler_heater"`
	WarmerHeater int `yaml:"warmer_heater"`
	Indicator    int `yaml:"indicator"`
	ReliefValve  int `yaml:"relief_valve"`
}

// GPIOConfig configures the real hardware backend.
type GPIOConfig struct {
	Chip     string   `yaml:"chip"`
	Pins     GPIOPins `yaml:"pins"`
	Debounce Duration `yaml:"debounce,omitempty"`
}

// DriverConfig selects and configures the hardware backend.
type DriverConfig struct {
	Type string     `yaml:"type"`
	Sim  SimConfig  `yaml:"sim,omitempty"`
	GPIO GPIOConfig `yaml:"gpio,omitempty"`
}

// TelemetryConfig toggles metric collection.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider,omitempty"`
}

// Config is the root configuration structure for the daemon.
type Config struct {
	Poll      Duration        `yaml:"poll"`
	Logging   LoggingConfig   `yaml:"logging"`
	Driver    DriverConfig    `yaml:"driver"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Load reads and decodes the configuration file from disk.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// PollInterval returns the configured sensor polling interval.
func (c *Config) PollInterval() time.Duration {
	if c == nil || c.Poll.Duration <= 0 {
		return time.Second
	}
	return c.Poll.Duration
}

// Validate checks the configuration for consistency without touching
// any hardware.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config must not be nil")
	}
	switch strings.ToLower(strings.TrimSpace(c.Driver.Type)) {
	case "", "sim":
		if err := c.Driver.Sim.Validate(); err != nil {
			return err
		}
	case "gpio":
		if err := c.Driver.GPIO.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported driver type %q", c.Driver.Type)
	}
	return nil
}

// Validate checks the seeded sensor states.
func (s SimConfig) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"warmer_plate", s.WarmerPlate},
		{"boiler", s.Boiler},
	} {
		switch strings.ToLower(strings.TrimSpace(field.value)) {
		case "", "empty", "not_empty":
		default:
			return fmt.Errorf("sim %s: unknown status %q", field.name, field.value)
		}
	}
	return nil
}

// Validate checks that every line assignment is distinct.
func (g GPIOConfig) Validate() error {
	pins := map[string]int{
		"warmer_plate":  g.Pins.WarmerPlate,
		"boiler":        g.Pins.Boiler,
		"brew_button":   g.Pins.BrewButton,
		"boiler_heater": g.Pins.BoilerHeater,
		"warmer_heater": g.Pins.WarmerHeater,
		"indicator":     g.Pins.Indicator,
		"relief_valve":  g.Pins.ReliefValve,
	}
	seen := make(map[int]string, len(pins))
	for name, pin := range pins {
		if pin < 0 {
			return fmt.Errorf("gpio pin %s: offset must not be negative", name)
		}
		if other, ok := seen[pin]; ok {
			return fmt.Errorf("gpio pin %s: offset %d already assigned to %s", name, pin, other)
		}
		seen[pin] = name
	}
	if g.Debounce.Duration < 0 {
		return fmt.Errorf("gpio debounce must not be negative")
	}
	return nil
}

// SameExceptPoll reports whether two configurations differ only in the
// polling interval. The poll interval is the single setting that can be
// applied to a running daemon; everything else requires a restart.
func SameExceptPoll(a, b *Config) bool {
	if a == nil || b == nil {
		return a == b
	}
	ca, cb := *a, *b
	ca.Poll = Duration{}
	cb.Poll = Duration{}
	return equalLoggingConfig(ca.Logging, cb.Logging) &&
		ca.Driver == cb.Driver &&
		ca.Telemetry == cb.Telemetry
}

func equalLoggingConfig(a, b LoggingConfig) bool {
	if a.Level != b.Level || a.Format != b.Format {
		return false
	}
	if a.Loki.Enabled != b.Loki.Enabled || a.Loki.URL != b.Loki.URL {
		return false
	}
	if len(a.Loki.Labels) != len(b.Loki.Labels) {
		return false
	}
	for k, v := range a.Loki.Labels {
		if b.Loki.Labels[k] != v {
			return false
		}
	}
	return true
}
