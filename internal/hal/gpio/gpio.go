//go:build linux

// Package gpio implements the hardware capability surface on top of
// the Linux GPIO character device. Float switches and the brew button
// are input lines, the heaters, indicator and relief valve are output
// lines. The brew-button latch is implemented with edge events so a
// press between two polls is never lost.
package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/timzifer/brewd/internal/config"
	"github.com/timzifer/brewd/internal/hal"
)

// Backend drives the machine through GPIO lines.
type Backend struct {
	chip *gpiocdev.Chip

	warmerPlate *gpiocdev.Line
	boiler      *gpiocdev.Line
	button      *gpiocdev.Line

	boilerHeater *gpiocdev.Line
	warmerHeater *gpiocdev.Line
	indicator    *gpiocdev.Line
	reliefValve  *gpiocdev.Line

	mu          sync.Mutex
	buttonLatch bool
}

// New opens the configured chip and requests all lines. Actuator lines
// start low (everything off, valve open).
func New(cfg config.GPIOConfig) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	chipName := cfg.Chip
	if chipName == "" {
		chipName = "gpiochip0"
	}
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("brewd"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	b := &Backend{chip: chip}
	cleanup := func() {
		b.Close()
	}

	b.warmerPlate, err = chip.RequestLine(cfg.Pins.WarmerPlate, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("request warmer plate pin %d: %w", cfg.Pins.WarmerPlate, err)
	}
	b.boiler, err = chip.RequestLine(cfg.Pins.Boiler, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("request boiler pin %d: %w", cfg.Pins.Boiler, err)
	}

	buttonOpts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(b.onButtonEvent),
	}
	if cfg.Debounce.Duration > 0 {
		buttonOpts = append(buttonOpts, gpiocdev.WithDebounce(cfg.Debounce.Duration))
	}
	b.button, err = chip.RequestLine(cfg.Pins.BrewButton, buttonOpts...)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("request brew button pin %d: %w", cfg.Pins.BrewButton, err)
	}

	outputs := []struct {
		name string
		pin  int
		line **gpiocdev.Line
	}{
		{"boiler heater", cfg.Pins.BoilerHeater, &b.boilerHeater},
		{"warmer heater", cfg.Pins.WarmerHeater, &b.warmerHeater},
		{"indicator", cfg.Pins.Indicator, &b.indicator},
		{"relief valve", cfg.Pins.ReliefValve, &b.reliefValve},
	}
	for _, out := range outputs {
		line, err := chip.RequestLine(out.pin, gpiocdev.AsOutput(0))
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("request %s pin %d: %w", out.name, out.pin, err)
		}
		*out.line = line
	}

	return b, nil
}

func (b *Backend) onButtonEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}
	b.mu.Lock()
	b.buttonLatch = true
	b.mu.Unlock()
}

// WarmerPlateStatus reads the pot sensor line.
func (b *Backend) WarmerPlateStatus() (hal.WarmerPlateStatus, error) {
	raw, err := b.warmerPlate.Value()
	if err != nil {
		return hal.WarmerPlateEmpty, fmt.Errorf("read warmer plate pin: %w", err)
	}
	if raw != 0 {
		return hal.WarmerPlateNotEmpty, nil
	}
	return hal.WarmerPlateEmpty, nil
}

// BoilerStatus reads the float switch line.
func (b *Backend) BoilerStatus() (hal.BoilerStatus, error) {
	raw, err := b.boiler.Value()
	if err != nil {
		return hal.BoilerEmpty, fmt.Errorf("read boiler pin: %w", err)
	}
	if raw != 0 {
		return hal.BoilerNotEmpty, nil
	}
	return hal.BoilerEmpty, nil
}

// BrewButtonStatus consumes the edge-event latch. The line itself is
// momentary; the latch remembers a press until the next read.
func (b *Backend) BrewButtonStatus() (hal.BrewButtonStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buttonLatch {
		b.buttonLatch = false
		return hal.BrewButtonPushed, nil
	}
	return hal.BrewButtonNotPushed, nil
}

// SetBoilerState drives the boiler heater relay.
func (b *Backend) SetBoilerState(state hal.BoilerState) error {
	if err := b.boilerHeater.SetValue(level(state == hal.BoilerOn)); err != nil {
		return fmt.Errorf("write boiler heater pin: %w", err)
	}
	return nil
}

// SetWarmerState drives the warmer heater relay.
func (b *Backend) SetWarmerState(state hal.WarmerState) error {
	if err := b.warmerHeater.SetValue(level(state == hal.WarmerOn)); err != nil {
		return fmt.Errorf("write warmer heater pin: %w", err)
	}
	return nil
}

// SetIndicatorState drives the indicator light.
func (b *Backend) SetIndicatorState(state hal.IndicatorState) error {
	if err := b.indicator.SetValue(level(state == hal.IndicatorOn)); err != nil {
		return fmt.Errorf("write indicator pin: %w", err)
	}
	return nil
}

// SetReliefValveState drives the valve solenoid. The solenoid holds
// the valve closed while energized.
func (b *Backend) SetReliefValveState(state hal.ReliefValveState) error {
	if err := b.reliefValve.SetValue(level(state == hal.ValveClosed)); err != nil {
		return fmt.Errorf("write relief valve pin: %w", err)
	}
	return nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}

// Close releases all requested lines and the chip. Output lines are
// reconfigured back to inputs so the machine is left de-energized.
func (b *Backend) Close() error {
	var firstErr error
	closeLine := func(line *gpiocdev.Line, output bool) {
		if line == nil {
			return
		}
		if output {
			if err := line.Reconfigure(gpiocdev.AsInput); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	closeLine(b.warmerPlate, false)
	closeLine(b.boiler, false)
	closeLine(b.button, false)
	closeLine(b.boilerHeater, true)
	closeLine(b.warmerHeater, true)
	closeLine(b.indicator, true)
	closeLine(b.reliefValve, true)
	if b.chip != nil {
		if err := b.chip.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
