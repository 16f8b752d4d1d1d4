package telemetry

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures telemetry events emitted by the control loop.
//
// Implementations must be inexpensive to call because hooks execute
// inline with the poll cycle.
type Collector interface {
	IncPollCycle()
	IncCycleError(sensor string)
	IncActuatorCommand(actuator string)
	SetActuatorState(actuator string, on bool)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncPollCycle()                 {}
func (noopCollector) IncCycleError(string)          {}
func (noopCollector) IncActuatorCommand(string)     {}
func (noopCollector) SetActuatorState(string, bool) {}

// PrometheusCollector exposes control-loop counters via Prometheus.
type PrometheusCollector struct {
	pollCycles       prometheus.Counter
	cycleErrors      *prometheus.CounterVec
	actuatorCommands *prometheus.CounterVec
	actuatorState    *prometheus.GaugeVec
}

var (
	registryMu         sync.Mutex
	pollCycleCounter   prometheus.Counter
	cycleErrorCounter  *prometheus.CounterVec
	actuatorCmdCounter *prometheus.CounterVec
	actuatorStateGauge *prometheus.GaugeVec
)

// NewPrometheusCollector registers the required metrics with the
// provided registerer. Repeated calls reuse already registered
// collectors instead of failing.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if pollCycleCounter == nil {
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brewd_poll_cycles_total",
			Help: "Number of completed sensor poll cycles.",
		})
		registered, err := registerCollector(reg, counter)
		if err != nil {
			return nil, err
		}
		existing, ok := registered.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("collector %s already registered with a different type", "brewd_poll_cycles_total")
		}
		pollCycleCounter = existing
	}

	if cycleErrorCounter == nil {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brewd_cycle_errors_total",
			Help: "Number of failed poll cycles by the sensor being checked.",
		}, []string{"sensor"})
		registered, err := registerCollector(reg, counter)
		if err != nil {
			return nil, err
		}
		existing, ok := registered.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector %s already registered with a different type", "brewd_cycle_errors_total")
		}
		cycleErrorCounter = existing
	}

	if actuatorCmdCounter == nil {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brewd_actuator_commands_total",
			Help: "Number of commands issued per actuator.",
		}, []string{"actuator"})
		registered, err := registerCollector(reg, counter)
		if err != nil {
			return nil, err
		}
		existing, ok := registered.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector %s already registered with a different type", "brewd_actuator_commands_total")
		}
		actuatorCmdCounter = existing
	}

	if actuatorStateGauge == nil {
		gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brewd_actuator_state",
			Help: "Last commanded actuator state (1 = on/open, 0 = off/closed).",
		}, []string{"actuator"})
		registered, err := registerCollector(reg, gauge)
		if err != nil {
			return nil, err
		}
		existing, ok := registered.(*prometheus.GaugeVec)
		if !ok {
			return nil, fmt.Errorf("collector %s already registered with a different type", "brewd_actuator_state")
		}
		actuatorStateGauge = existing
	}

	return &PrometheusCollector{
		pollCycles:       pollCycleCounter,
		cycleErrors:      cycleErrorCounter,
		actuatorCommands: actuatorCmdCounter,
		actuatorState:    actuatorStateGauge,
	}, nil
}

// registerCollector registers the collector or returns the existing one
// when an identical collector was registered before.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// IncPollCycle counts a completed poll cycle.
func (p *PrometheusCollector) IncPollCycle() {
	if p == nil || p.pollCycles == nil {
		return
	}
	p.pollCycles.Inc()
}

// IncCycleError records a failed poll cycle attributed to the sensor
// whose check raised the error.
func (p *PrometheusCollector) IncCycleError(sensor string) {
	if p == nil || p.cycleErrors == nil {
		return
	}
	p.cycleErrors.WithLabelValues(sensor).Inc()
}

// IncActuatorCommand counts a command issued to an actuator.
func (p *PrometheusCollector) IncActuatorCommand(actuator string) {
	if p == nil || p.actuatorCommands == nil {
		return
	}
	p.actuatorCommands.WithLabelValues(actuator).Inc()
}

// SetActuatorState updates the gauge tracking the last commanded state.
func (p *PrometheusCollector) SetActuatorState(actuator string, on bool) {
	if p == nil || p.actuatorState == nil {
		return
	}
	value := 0.0
	if on {
		value = 1.0
	}
	p.actuatorState.WithLabelValues(actuator).Set(value)
}
