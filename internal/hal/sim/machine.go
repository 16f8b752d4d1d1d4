// Package sim provides an in-memory coffee maker backend. It is used
// by the daemon when no real hardware is attached and by tests that
// need a scriptable machine.
package sim

import (
	"fmt"
	"strings"
	"sync"

	"github.com/timzifer/brewd/internal/config"
	"github.com/timzifer/brewd/internal/hal"
)

// Machine implements hal.Interface with in-memory state. All methods
// are safe for concurrent use so a test or an interactive shell can
// flip sensor states while the control loop polls.
type Machine struct {
	mu sync.Mutex

	warmerPlate hal.WarmerPlateStatus
	boiler      hal.BoilerStatus
	buttonLatch bool

	boilerState    hal.BoilerState
	warmerState    hal.WarmerState
	indicatorState hal.IndicatorState
	valveState     hal.ReliefValveState

	readErr  error
	writeErr error

	writes []string
}

// New builds a machine seeded from the driver settings. Unset statuses
// default to empty.
func New(cfg config.SimConfig) (*Machine, error) {
	m := &Machine{valveState: hal.ValveClosed}
	warmer, err := parseStatus(cfg.WarmerPlate, "warmer_plate")
	if err != nil {
		return nil, err
	}
	if warmer {
		m.warmerPlate = hal.WarmerPlateNotEmpty
	}
	boiler, err := parseStatus(cfg.Boiler, "boiler")
	if err != nil {
		return nil, err
	}
	if boiler {
		m.boiler = hal.BoilerNotEmpty
	}
	return m, nil
}

func parseStatus(raw, name string) (notEmpty bool, err error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "empty":
		return false, nil
	case "not_empty":
		return true, nil
	default:
		return false, fmt.Errorf("sim %s: unknown status %q", name, raw)
	}
}

// WarmerPlateStatus samples the simulated pot sensor.
func (m *Machine) WarmerPlateStatus() (hal.WarmerPlateStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return hal.WarmerPlateEmpty, m.readErr
	}
	return m.warmerPlate, nil
}

// BoilerStatus samples the simulated float switch.
func (m *Machine) BoilerStatus() (hal.BoilerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return hal.BoilerEmpty, m.readErr
	}
	return m.boiler, nil
}

// BrewButtonStatus returns the latched button state and resets the
// latch, so a press between two polls is reported exactly once.
func (m *Machine) BrewButtonStatus() (hal.BrewButtonStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return hal.BrewButtonNotPushed, m.readErr
	}
	if m.buttonLatch {
		m.buttonLatch = false
		return hal.BrewButtonPushed, nil
	}
	return hal.BrewButtonNotPushed, nil
}

// SetBoilerState records the commanded boiler heater state.
func (m *Machine) SetBoilerState(state hal.BoilerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.boilerState = state
	m.writes = append(m.writes, "boiler="+state.String())
	return nil
}

// SetWarmerState records the commanded warmer heater state.
func (m *Machine) SetWarmerState(state hal.WarmerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.warmerState = state
	m.writes = append(m.writes, "warmer="+state.String())
	return nil
}

// SetIndicatorState records the commanded indicator light state.
func (m *Machine) SetIndicatorState(state hal.IndicatorState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.indicatorState = state
	m.writes = append(m.writes, "indicator="+state.String())
	return nil
}

// SetReliefValveState records the commanded valve state.
func (m *Machine) SetReliefValveState(state hal.ReliefValveState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.valveState = state
	m.writes = append(m.writes, "valve="+state.String())
	return nil
}

// PressBrewButton latches a button press until the next read.
func (m *Machine) PressBrewButton() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buttonLatch = true
}

// PlacePot puts a pot with coffee on the warmer plate.
func (m *Machine) PlacePot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warmerPlate = hal.WarmerPlateNotEmpty
}

// RemovePot takes the pot off the warmer plate.
func (m *Machine) RemovePot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warmerPlate = hal.WarmerPlateEmpty
}

// FillBoiler raises the float switch above the minimum level.
func (m *Machine) FillBoiler() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boiler = hal.BoilerNotEmpty
}

// DrainBoiler drops the float switch below the minimum level.
func (m *Machine) DrainBoiler() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boiler = hal.BoilerEmpty
}

// FailReads makes every subsequent sensor read return err. Passing nil
// restores normal operation.
func (m *Machine) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes every subsequent actuator write return err. Passing
// nil restores normal operation.
func (m *Machine) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// BoilerState returns the last commanded boiler heater state.
func (m *Machine) BoilerState() hal.BoilerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boilerState
}

// WarmerState returns the last commanded warmer heater state.
func (m *Machine) WarmerState() hal.WarmerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.warmerState
}

// IndicatorState returns the last commanded indicator light state.
func (m *Machine) IndicatorState() hal.IndicatorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indicatorState
}

// ReliefValveState returns the last commanded valve state.
func (m *Machine) ReliefValveState() hal.ReliefValveState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valveState
}

// Writes returns the chronological list of actuator commands issued so
// far, rendered as "actuator=state" strings.
func (m *Machine) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// ResetWrites clears the recorded command history.
func (m *Machine) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}
