// Package hal defines the hardware capability surface of the coffee
// maker. The control core consumes this interface; concrete backends
// (GPIO hardware, the in-memory simulator) implement it.
package hal

import "fmt"

// WarmerPlateStatus reports what the warmer-plate sensor detects.
type WarmerPlateStatus int

const (
	// WarmerPlateEmpty means no pot is standing on the plate.
	WarmerPlateEmpty WarmerPlateStatus = iota
	// WarmerPlateNotEmpty means a pot is present on the plate.
	WarmerPlateNotEmpty
)

func (s WarmerPlateStatus) String() string {
	switch s {
	case WarmerPlateEmpty:
		return "empty"
	case WarmerPlateNotEmpty:
		return "not_empty"
	default:
		return fmt.Sprintf("warmer_plate_status(%d)", int(s))
	}
}

// BoilerStatus reports the boiler float switch.
type BoilerStatus int

const (
	// BoilerEmpty means less than the minimum water volume is present.
	BoilerEmpty BoilerStatus = iota
	// BoilerNotEmpty means there is enough water to heat.
	BoilerNotEmpty
)

func (s BoilerStatus) String() string {
	switch s {
	case BoilerEmpty:
		return "empty"
	case BoilerNotEmpty:
		return "not_empty"
	default:
		return fmt.Sprintf("boiler_status(%d)", int(s))
	}
}

// BrewButtonStatus reports the latched brew button.
type BrewButtonStatus int

const (
	// BrewButtonNotPushed means the button was not pressed since the last read.
	BrewButtonNotPushed BrewButtonStatus = iota
	// BrewButtonPushed means the button was pressed at least once since the last read.
	BrewButtonPushed
)

func (s BrewButtonStatus) String() string {
	switch s {
	case BrewButtonNotPushed:
		return "not_pushed"
	case BrewButtonPushed:
		return "pushed"
	default:
		return fmt.Sprintf("brew_button_status(%d)", int(s))
	}
}

// BoilerState commands the boiler heating element.
type BoilerState int

const (
	BoilerOff BoilerState = iota
	BoilerOn
)

func (s BoilerState) String() string {
	if s == BoilerOn {
		return "on"
	}
	return "off"
}

// WarmerState commands the warmer-plate heating element.
type WarmerState int

const (
	WarmerOff WarmerState = iota
	WarmerOn
)

func (s WarmerState) String() string {
	if s == WarmerOn {
		return "on"
	}
	return "off"
}

// IndicatorState commands the indicator light.
type IndicatorState int

const (
	IndicatorOff IndicatorState = iota
	IndicatorOn
)

func (s IndicatorState) String() string {
	if s == IndicatorOn {
		return "on"
	}
	return "off"
}

// ReliefValveState commands the pressure-relief valve. When the valve
// is closed, steam pressure forces hot water over the filter; when it
// is open, steam escapes and brewing pauses.
type ReliefValveState int

const (
	ValveClosed ReliefValveState = iota
	ValveOpen
)

func (s ReliefValveState) String() string {
	if s == ValveOpen {
		return "open"
	}
	return "closed"
}

// Interface is the complete capability set of the machine. All reads
// sample the sensor at call time. BrewButtonStatus has latch
// semantics: a press since the previous read is reported exactly once,
// and every read resets the latch, so a press survives slow polling.
// Writes are fire and forget; no acknowledgement is read back.
type Interface interface {
	WarmerPlateStatus() (WarmerPlateStatus, error)
	BoilerStatus() (BoilerStatus, error)
	BrewButtonStatus() (BrewButtonStatus, error)

	SetBoilerState(state BoilerState) error
	SetWarmerState(state WarmerState) error
	SetIndicatorState(state IndicatorState) error
	SetReliefValveState(state ReliefValveState) error
}

// Closer is implemented by backends that hold hardware resources.
type Closer interface {
	Close() error
}
