package service

import (
	"fmt"

	"github.com/timzifer/brewd/internal/hal"
)

// Observers are reaction closures bound to one sensor. They run
// synchronously in registration order on every poll; the first error
// aborts the remaining observers of that sensor for the cycle.
type (
	warmerPlateObserver func(status hal.WarmerPlateStatus) error
	boilerObserver      func(status hal.BoilerStatus) error
	brewButtonObserver  func(status hal.BrewButtonStatus) error
)

// publisher is the common surface the poll loop drives.
type publisher interface {
	name() string
	check() error
}

// warmerPlateSensor publishes the pot sensor to its observers.
type warmerPlateSensor struct {
	hw        hal.Interface
	observers []warmerPlateObserver
}

func newWarmerPlateSensor(hw hal.Interface) *warmerPlateSensor {
	return &warmerPlateSensor{hw: hw}
}

func (s *warmerPlateSensor) name() string { return "warmer_plate" }

func (s *warmerPlateSensor) subscribe(obs warmerPlateObserver) {
	s.observers = append(s.observers, obs)
}

// check reads the sensor once and notifies every observer with the
// just-read value. Observers are notified even when the value did not
// change; every poll is a full re-evaluation.
func (s *warmerPlateSensor) check() error {
	status, err := s.hw.WarmerPlateStatus()
	if err != nil {
		return fmt.Errorf("read warmer plate sensor: %w", err)
	}
	for _, obs := range s.observers {
		if err := obs(status); err != nil {
			return err
		}
	}
	return nil
}

// potPresent re-reads the sensor; it does not reuse the value from the
// last check.
func (s *warmerPlateSensor) potPresent() (bool, error) {
	status, err := s.hw.WarmerPlateStatus()
	if err != nil {
		return false, fmt.Errorf("read warmer plate sensor: %w", err)
	}
	return status != hal.WarmerPlateEmpty, nil
}

// boilerSensor publishes the float switch to its observers.
type boilerSensor struct {
	hw        hal.Interface
	observers []boilerObserver
}

func newBoilerSensor(hw hal.Interface) *boilerSensor {
	return &boilerSensor{hw: hw}
}

func (s *boilerSensor) name() string { return "boiler" }

func (s *boilerSensor) subscribe(obs boilerObserver) {
	s.observers = append(s.observers, obs)
}

func (s *boilerSensor) check() error {
	status, err := s.hw.BoilerStatus()
	if err != nil {
		return fmt.Errorf("read boiler sensor: %w", err)
	}
	for _, obs := range s.observers {
		if err := obs(status); err != nil {
			return err
		}
	}
	return nil
}

// isEmpty re-reads the float switch at call time.
func (s *boilerSensor) isEmpty() (bool, error) {
	status, err := s.hw.BoilerStatus()
	if err != nil {
		return false, fmt.Errorf("read boiler sensor: %w", err)
	}
	return status == hal.BoilerEmpty, nil
}

// brewButtonSensor publishes the latched button to its observers. The
// latch reset happens in the hardware read itself.
type brewButtonSensor struct {
	hw        hal.Interface
	observers []brewButtonObserver
}

func newBrewButtonSensor(hw hal.Interface) *brewButtonSensor {
	return &brewButtonSensor{hw: hw}
}

func (s *brewButtonSensor) name() string { return "brew_button" }

func (s *brewButtonSensor) subscribe(obs brewButtonObserver) {
	s.observers = append(s.observers, obs)
}

func (s *brewButtonSensor) check() error {
	status, err := s.hw.BrewButtonStatus()
	if err != nil {
		return fmt.Errorf("read brew button: %w", err)
	}
	for _, obs := range s.observers {
		if err := obs(status); err != nil {
			return err
		}
	}
	return nil
}
