package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/timzifer/brewd/internal/config"
	"github.com/timzifer/brewd/internal/hal"
	"github.com/timzifer/brewd/internal/hal/gpio"
	"github.com/timzifer/brewd/internal/hal/sim"
	"github.com/timzifer/brewd/internal/logging"
	"github.com/timzifer/brewd/internal/reload"
	"github.com/timzifer/brewd/internal/service"
	"github.com/timzifer/brewd/telemetry"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to configuration file")
	configCheck := flag.Bool("config-check", false, "Validate configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if *configCheck {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "configuration invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration check completed successfully.")
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	logger, cleanup, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup logger")
	}
	defer cleanup()
	log.Logger = logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backend, err := newBackend(cfg.Driver, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open hardware backend")
	}
	if closer, ok := backend.(hal.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close hardware backend")
			}
		}()
	}

	collector, err := newTelemetryCollector(cfg.Telemetry)
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry disabled")
		collector = telemetry.Noop()
	}

	srv, err := service.New(cfg, logger, backend, collector)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create service")
	}

	if err := run(ctx, srv, cfg, *cfgPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("service stopped with error")
	}
}

// run drives the control loop and applies poll-interval changes from
// the configuration file while it runs.
func run(ctx context.Context, srv *service.Service, cfg *config.Config, cfgPath string, logger zerolog.Logger) error {
	watcher, err := reload.NewWatcher(cfgPath)
	if err != nil {
		logger.Warn().Err(err).Msg("config watcher disabled")
		watcher = nil
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(runCtx)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cancelRun()
			return <-errCh
		case err := <-errCh:
			return err
		case <-ticker.C:
			if watcher == nil {
				continue
			}
			changed, err := watcher.Changed()
			if err != nil {
				logger.Error().Err(err).Msg("failed to check configuration changes")
				continue
			}
			if !changed {
				continue
			}
			newCfg, err := config.Load(cfgPath)
			if err != nil {
				logger.Error().Err(err).Msg("failed to reload configuration")
				continue
			}
			if err := newCfg.Validate(); err != nil {
				logger.Error().Err(err).Msg("reloaded configuration invalid")
				continue
			}
			if !config.SameExceptPoll(cfg, newCfg) {
				logger.Warn().Msg("configuration change requires a restart; only the poll interval can be applied live")
			}
			if newCfg.PollInterval() != cfg.PollInterval() {
				srv.SetPollInterval(newCfg.PollInterval())
			}
			cfg.Poll = newCfg.Poll
			if err := watcher.Update(); err != nil {
				logger.Error().Err(err).Msg("failed to update watcher state")
			}
		}
	}
}

func newBackend(cfg config.DriverConfig, logger zerolog.Logger) (hal.Interface, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "sim":
		logger.Info().Msg("using simulated hardware backend")
		machine, err := sim.New(cfg.Sim)
		if err != nil {
			return nil, err
		}
		return machine, nil
	case "gpio":
		logger.Info().Str("chip", cfg.GPIO.Chip).Msg("using gpio hardware backend")
		backend, err := gpio.New(cfg.GPIO)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported driver type %q", cfg.Type)
	}
}

func newTelemetryCollector(cfg config.TelemetryConfig) (telemetry.Collector, error) {
	if !cfg.Enabled {
		return telemetry.Noop(), nil
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", "prometheus":
		collector, err := telemetry.NewPrometheusCollector(nil)
		if err != nil {
			return nil, err
		}
		return collector, nil
	default:
		return telemetry.Noop(), fmt.Errorf("unsupported telemetry provider %q", cfg.Provider)
	}
}
