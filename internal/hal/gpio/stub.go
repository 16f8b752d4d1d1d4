//go:build !linux

package gpio

import (
	"errors"

	"github.com/timzifer/brewd/internal/config"
	"github.com/timzifer/brewd/internal/hal"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Backend is not available on non-Linux platforms.
type Backend struct{}

// New returns an error on non-Linux platforms.
func New(config.GPIOConfig) (*Backend, error) {
	return nil, errUnsupported
}

func (b *Backend) WarmerPlateStatus() (hal.WarmerPlateStatus, error) {
	return hal.WarmerPlateEmpty, errUnsupported
}

func (b *Backend) BoilerStatus() (hal.BoilerStatus, error) {
	return hal.BoilerEmpty, errUnsupported
}

func (b *Backend) BrewButtonStatus() (hal.BrewButtonStatus, error) {
	return hal.BrewButtonNotPushed, errUnsupported
}

func (b *Backend) SetBoilerState(hal.BoilerState) error { return errUnsupported }

func (b *Backend) SetWarmerState(hal.WarmerState) error { return errUnsupported }

func (b *Backend) SetIndicatorState(hal.IndicatorState) error { return errUnsupported }

func (b *Backend) SetReliefValveState(hal.ReliefValveState) error { return errUnsupported }

func (b *Backend) Close() error { return nil }
