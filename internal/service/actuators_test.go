package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/timzifer/brewd/internal/hal"
	"github.com/timzifer/brewd/telemetry"
)

var errTest = errors.New("test failure")

func newTestBoiler(hw *fakeMachine) *boiler {
	collector := telemetry.Noop()
	v := &valve{hw: hw, collector: collector}
	return &boiler{
		hw:           hw,
		boilerSensor: newBoilerSensor(hw),
		warmerSensor: newWarmerPlateSensor(hw),
		valve:        v,
		collector:    collector,
		logger:       zerolog.Nop(),
	}
}

func TestBoilerTurnOnRequiresWaterAndPot(t *testing.T) {
	cases := []struct {
		name   string
		boiler hal.BoilerStatus
		warmer hal.WarmerPlateStatus
		wantOn bool
	}{
		{"water and pot", hal.BoilerNotEmpty, hal.WarmerPlateNotEmpty, true},
		{"no water", hal.BoilerEmpty, hal.WarmerPlateNotEmpty, false},
		{"no pot", hal.BoilerNotEmpty, hal.WarmerPlateEmpty, false},
		{"neither", hal.BoilerEmpty, hal.WarmerPlateEmpty, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hw := newFakeMachine()
			hw.boiler = tc.boiler
			hw.warmer = tc.warmer
			b := newTestBoiler(hw)

			if err := b.turnOn(); err != nil {
				t.Fatalf("turnOn: %v", err)
			}
			if b.isOn != tc.wantOn {
				t.Fatalf("isOn = %v, want %v", b.isOn, tc.wantOn)
			}
			if !tc.wantOn && len(hw.writes) != 0 {
				t.Fatalf("refused turnOn must not write, got %v", hw.writes)
			}
		})
	}
}

func TestBoilerTurnOnClosesValveBeforeHeating(t *testing.T) {
	hw := newFakeMachine()
	hw.boiler = hal.BoilerNotEmpty
	hw.warmer = hal.WarmerPlateNotEmpty
	b := newTestBoiler(hw)

	if err := b.turnOn(); err != nil {
		t.Fatalf("turnOn: %v", err)
	}
	want := []string{"valve=closed", "boiler=on"}
	if len(hw.writes) != len(want) {
		t.Fatalf("writes = %v, want %v", hw.writes, want)
	}
	for i := range want {
		if hw.writes[i] != want[i] {
			t.Fatalf("writes[%d] = %q, want %q", i, hw.writes[i], want[i])
		}
	}
}

func TestBoilerTurnOffAlwaysSucceeds(t *testing.T) {
	hw := newFakeMachine()
	// Worst case: no water, no pot, never turned on.
	b := newTestBoiler(hw)

	for i := 0; i < 3; i++ {
		if err := b.turnOff(); err != nil {
			t.Fatalf("turnOff #%d: %v", i, err)
		}
		if b.isOn {
			t.Fatalf("isOn = true after turnOff #%d", i)
		}
	}
	if got := countWrites(hw.writes, "boiler=off"); got != 3 {
		t.Fatalf("boiler=off commanded %d times, want 3", got)
	}
}

func TestBoilerTurnOnPropagatesSensorError(t *testing.T) {
	hw := newFakeMachine()
	hw.boiler = hal.BoilerNotEmpty
	hw.warmer = hal.WarmerPlateNotEmpty
	b := newTestBoiler(hw)

	hw.boilerErr = errTest
	if err := b.turnOn(); err == nil {
		t.Fatalf("expected error from boiler sensor read")
	}
	if b.isOn {
		t.Fatalf("isOn changed despite failed precondition read")
	}
	if len(hw.writes) != 0 {
		t.Fatalf("unexpected writes: %v", hw.writes)
	}
}
