package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/timzifer/brewd/internal/hal"
	"github.com/timzifer/brewd/telemetry"
)

// Actuator controllers wrap the raw hardware writes behind
// intention-revealing operations. Commanded state always reflects the
// last operation; nothing is read back from hardware.

type warmerPlate struct {
	hw        hal.Interface
	collector telemetry.Collector
}

func (w *warmerPlate) turnOn() error {
	if err := w.hw.SetWarmerState(hal.WarmerOn); err != nil {
		return fmt.Errorf("set warmer state: %w", err)
	}
	w.collector.IncActuatorCommand("warmer_plate")
	w.collector.SetActuatorState("warmer_plate", true)
	return nil
}

func (w *warmerPlate) turnOff() error {
	if err := w.hw.SetWarmerState(hal.WarmerOff); err != nil {
		return fmt.Errorf("set warmer state: %w", err)
	}
	w.collector.IncActuatorCommand("warmer_plate")
	w.collector.SetActuatorState("warmer_plate", false)
	return nil
}

type valve struct {
	hw        hal.Interface
	collector telemetry.Collector
}

// open vents boiler steam to atmosphere, pausing the brew.
func (v *valve) open() error {
	if err := v.hw.SetReliefValveState(hal.ValveOpen); err != nil {
		return fmt.Errorf("set relief valve state: %w", err)
	}
	v.collector.IncActuatorCommand("relief_valve")
	v.collector.SetActuatorState("relief_valve", true)
	return nil
}

// close lets steam pressure build so hot water sprays over the filter.
func (v *valve) close() error {
	if err := v.hw.SetReliefValveState(hal.ValveClosed); err != nil {
		return fmt.Errorf("set relief valve state: %w", err)
	}
	v.collector.IncActuatorCommand("relief_valve")
	v.collector.SetActuatorState("relief_valve", false)
	return nil
}

type indicatorLight struct {
	hw        hal.Interface
	collector telemetry.Collector
}

func (l *indicatorLight) turnOn() error {
	if err := l.hw.SetIndicatorState(hal.IndicatorOn); err != nil {
		return fmt.Errorf("set indicator state: %w", err)
	}
	l.collector.IncActuatorCommand("indicator")
	l.collector.SetActuatorState("indicator", true)
	return nil
}

func (l *indicatorLight) turnOff() error {
	if err := l.hw.SetIndicatorState(hal.IndicatorOff); err != nil {
		return fmt.Errorf("set indicator state: %w", err)
	}
	l.collector.IncActuatorCommand("indicator")
	l.collector.SetActuatorState("indicator", false)
	return nil
}

// onWarmerPlateStatus lights the indicator while a full pot sits on
// the plate.
func (l *indicatorLight) onWarmerPlateStatus(status hal.WarmerPlateStatus) error {
	if status == hal.WarmerPlateNotEmpty {
		return l.turnOn()
	}
	return l.turnOff()
}

// boiler controls the boiler heating element. It holds both sensors
// and the valve because turning on is conditional on live readings.
type boiler struct {
	hw           hal.Interface
	boilerSensor *boilerSensor
	warmerSensor *warmerPlateSensor
	valve        *valve
	collector    telemetry.Collector
	logger       zerolog.Logger

	isOn bool
}

// turnOn starts heating only if the boiler holds water and a pot is
// present on the plate, both sampled at call time. When either
// condition fails the call is a silent no-op: no hardware write, isOn
// unchanged. The valve closes before the heater engages so brewing
// pressure only builds with confirmed capacity to heat.
func (b *boiler) turnOn() error {
	empty, err := b.boilerSensor.isEmpty()
	if err != nil {
		return err
	}
	present, err := b.warmerSensor.potPresent()
	if err != nil {
		return err
	}
	if empty || !present {
		b.logger.Debug().
			Bool("boiler_empty", empty).
			Bool("pot_present", present).
			Msg("brew request ignored")
		return nil
	}
	if err := b.valve.close(); err != nil {
		return err
	}
	if err := b.hw.SetBoilerState(hal.BoilerOn); err != nil {
		return fmt.Errorf("set boiler state: %w", err)
	}
	b.isOn = true
	b.collector.IncActuatorCommand("boiler")
	b.collector.SetActuatorState("boiler", true)
	b.logger.Info().Msg("brew cycle started")
	return nil
}

// turnOff is unconditional and idempotent.
func (b *boiler) turnOff() error {
	if err := b.hw.SetBoilerState(hal.BoilerOff); err != nil {
		return fmt.Errorf("set boiler state: %w", err)
	}
	b.isOn = false
	b.collector.IncActuatorCommand("boiler")
	b.collector.SetActuatorState("boiler", false)
	return nil
}
