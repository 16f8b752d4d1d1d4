// Package service implements the control logic of the coffee maker:
// sensor publishers, actuator controllers and the poll loop that ties
// them together. The rules are fixed; the only tunable is the poll
// interval.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/timzifer/brewd/internal/config"
	"github.com/timzifer/brewd/internal/hal"
	"github.com/timzifer/brewd/telemetry"
)

// Service owns the sensors, actuators and the poll scheduler.
type Service struct {
	logger    zerolog.Logger
	hw        hal.Interface
	collector telemetry.Collector

	warmerSensor *warmerPlateSensor
	boilerSensor *boilerSensor
	buttonSensor *brewButtonSensor
	// publishers in fixed poll order: warmer plate, boiler, button.
	// Later publishers see actuator state as mutated by earlier ones,
	// which resolves the valve coordination between the warmer-plate
	// rule and the boiler's own valve-close side effect.
	publishers []publisher

	warmer    *warmerPlate
	valve     *valve
	indicator *indicatorLight
	boiler    *boiler

	controller *pollController

	metrics Metrics
}

// Metrics summarizes loop activity for diagnostics.
type Metrics struct {
	CycleCount   uint64
	LastDuration time.Duration
	LastCycle    time.Time
}

// New wires sensors, actuators and reactions. The backend is any
// hal.Interface implementation; collector may be nil.
func New(cfg *config.Config, logger zerolog.Logger, hw hal.Interface, collector telemetry.Collector) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if hw == nil {
		return nil, errors.New("hardware backend must not be nil")
	}
	if collector == nil {
		collector = telemetry.Noop()
	}

	s := &Service{
		logger:    logger,
		hw:        hw,
		collector: collector,
	}
	s.warmerSensor = newWarmerPlateSensor(hw)
	s.boilerSensor = newBoilerSensor(hw)
	s.buttonSensor = newBrewButtonSensor(hw)

	s.valve = &valve{hw: hw, collector: collector}
	s.warmer = &warmerPlate{hw: hw, collector: collector}
	s.indicator = &indicatorLight{hw: hw, collector: collector}
	s.boiler = &boiler{
		hw:           hw,
		boilerSensor: s.boilerSensor,
		warmerSensor: s.warmerSensor,
		valve:        s.valve,
		collector:    collector,
		logger:       logger.With().Str("component", "boiler").Logger(),
	}

	// Reactions in registration order. On the warmer publisher the
	// valve rule runs first, then the plate heater, then the
	// indicator; all three fire on every poll.
	s.warmerSensor.subscribe(func(status hal.WarmerPlateStatus) error {
		if status == hal.WarmerPlateEmpty {
			return s.valve.open()
		}
		return s.valve.close()
	})
	s.warmerSensor.subscribe(func(status hal.WarmerPlateStatus) error {
		if status == hal.WarmerPlateNotEmpty {
			return s.warmer.turnOn()
		}
		return s.warmer.turnOff()
	})
	s.warmerSensor.subscribe(s.indicator.onWarmerPlateStatus)

	s.boilerSensor.subscribe(func(status hal.BoilerStatus) error {
		if status == hal.BoilerEmpty {
			return s.boiler.turnOff()
		}
		return nil
	})

	s.buttonSensor.subscribe(func(status hal.BrewButtonStatus) error {
		if status == hal.BrewButtonPushed {
			return s.boiler.turnOn()
		}
		return nil
	})

	s.publishers = []publisher{s.warmerSensor, s.boilerSensor, s.buttonSensor}
	s.controller = newPollController(cfg.PollInterval())
	return s, nil
}

// Run drives the poll loop until the context is cancelled or a
// hardware operation fails. There is no retry and no degraded mode: a
// failed cycle stops the loop and the error is returned to the caller.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.controller.Interval()).
		Msg("control loop started")
	for {
		now, err := s.controller.Wait(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.logger.Info().Msg("control loop stopped")
				return nil
			}
			return err
		}
		if err := s.IterateOnce(now); err != nil {
			s.logger.Error().Err(err).Msg("poll cycle failed")
			return err
		}
	}
}

// IterateOnce performs a single poll cycle: every publisher checked in
// order, all observer reactions applied synchronously. A failure
// aborts the cycle immediately; publishers after the failing one are
// not checked.
func (s *Service) IterateOnce(now time.Time) error {
	start := time.Now()
	for _, pub := range s.publishers {
		if err := pub.check(); err != nil {
			s.collector.IncCycleError(pub.name())
			return err
		}
	}
	s.collector.IncPollCycle()
	s.metrics.CycleCount++
	s.metrics.LastDuration = time.Since(start)
	s.metrics.LastCycle = now
	return nil
}

// SetPollInterval applies a new interval to the running loop.
func (s *Service) SetPollInterval(d time.Duration) {
	s.controller.SetInterval(d)
	s.logger.Info().Dur("interval", d).Msg("poll interval updated")
}

// PollInterval returns the currently effective interval.
func (s *Service) PollInterval() time.Duration {
	return s.controller.Interval()
}

// BoilerOn reports whether the last boiler command was "on". It
// mirrors commanded state, not a hardware readback.
func (s *Service) BoilerOn() bool {
	return s.boiler.isOn
}

// Metrics returns a copy of the loop counters.
func (s *Service) Metrics() Metrics {
	return s.metrics
}
