package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `poll: 250ms
logging:
  level: debug
  format: text
driver:
  type: sim
  sim:
    boiler: not_empty
    warmer_plate: empty
telemetry:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.PollInterval(); got != 250*time.Millisecond {
		t.Fatalf("PollInterval() = %v, want 250ms", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Driver.Sim.Boiler != "not_empty" {
		t.Fatalf("sim boiler = %q, want not_empty", cfg.Driver.Sim.Boiler)
	}
	if !cfg.Telemetry.Enabled {
		t.Fatalf("telemetry should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestPollIntervalDefaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.PollInterval(); got != time.Second {
		t.Fatalf("PollInterval() = %v, want 1s default", got)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "poll: soon\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unparseable duration")
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{Driver: DriverConfig{Type: "modbus"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown driver type")
	}
}

func TestValidateRejectsBadSimStatus(t *testing.T) {
	cfg := &Config{Driver: DriverConfig{Type: "sim", Sim: SimConfig{Boiler: "full"}}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown sim status")
	}
}

func TestGPIOValidateRejectsDuplicatePins(t *testing.T) {
	cfg := GPIOConfig{Pins: GPIOPins{
		WarmerPlate:  5,
		Boiler:       6,
		BrewButton:   13,
		BoilerHeater: 16,
		WarmerHeater: 19,
		Indicator:    20,
		ReliefValve:  16,
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for duplicate pin assignment")
	}
}

func TestSameExceptPoll(t *testing.T) {
	base := &Config{
		Poll:    Duration{Duration: time.Second},
		Logging: LoggingConfig{Level: "info"},
		Driver:  DriverConfig{Type: "sim"},
	}

	pollOnly := &Config{
		Poll:    Duration{Duration: 100 * time.Millisecond},
		Logging: LoggingConfig{Level: "info"},
		Driver:  DriverConfig{Type: "sim"},
	}
	if !SameExceptPoll(base, pollOnly) {
		t.Fatalf("configs differing only in poll should match")
	}

	otherDriver := &Config{
		Poll:    Duration{Duration: time.Second},
		Logging: LoggingConfig{Level: "info"},
		Driver:  DriverConfig{Type: "gpio"},
	}
	if SameExceptPoll(base, otherDriver) {
		t.Fatalf("driver change must not count as poll-only")
	}

	otherLogging := &Config{
		Poll:    Duration{Duration: time.Second},
		Logging: LoggingConfig{Level: "debug"},
		Driver:  DriverConfig{Type: "sim"},
	}
	if SameExceptPoll(base, otherLogging) {
		t.Fatalf("logging change must not count as poll-only")
	}
}
