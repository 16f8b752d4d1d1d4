package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func resetRegistered() {
	registryMu.Lock()
	pollCycleCounter = nil
	cycleErrorCounter = nil
	actuatorCmdCounter = nil
	actuatorStateGauge = nil
	registryMu.Unlock()
}

func TestNoopCollector(t *testing.T) {
	collector := Noop()
	require.NotNil(t, collector)
	collector.IncPollCycle()
	collector.IncCycleError("warmer_plate")
	collector.IncActuatorCommand("boiler")
	collector.SetActuatorState("boiler", true)
}

func TestPrometheusCollectorRecordsMetrics(t *testing.T) {
	resetRegistered()
	t.Cleanup(resetRegistered)

	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.NotNil(t, collector)

	collector.IncPollCycle()
	collector.IncPollCycle()
	collector.IncActuatorCommand("boiler")
	collector.SetActuatorState("boiler", true)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	cycles := byName["brewd_poll_cycles_total"]
	require.NotNil(t, cycles)
	require.Len(t, cycles.Metric, 1)
	require.Equal(t, 2.0, cycles.Metric[0].GetCounter().GetValue())

	commands := byName["brewd_actuator_commands_total"]
	require.NotNil(t, commands)
	require.Len(t, commands.Metric, 1)
	require.Equal(t, 1.0, commands.Metric[0].GetCounter().GetValue())

	state := byName["brewd_actuator_state"]
	require.NotNil(t, state)
	require.Len(t, state.Metric, 1)
	require.Equal(t, 1.0, state.Metric[0].GetGauge().GetValue())

	collector.SetActuatorState("boiler", false)
	families, err = reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "brewd_actuator_state" {
			require.Equal(t, 0.0, mf.Metric[0].GetGauge().GetValue())
		}
	}
}

func TestPrometheusCollectorReusesRegisteredCollectors(t *testing.T) {
	resetRegistered()
	t.Cleanup(resetRegistered)

	reg := prometheus.NewRegistry()
	first, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	again, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	require.Same(t, first.pollCycles, again.pollCycles)
	require.Same(t, first.cycleErrors, again.cycleErrors)

	first.IncPollCycle()
	again.IncPollCycle()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "brewd_poll_cycles_total" {
			require.Equal(t, 2.0, mf.Metric[0].GetCounter().GetValue())
		}
	}
}
