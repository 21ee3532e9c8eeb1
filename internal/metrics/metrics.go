// Package metrics exports suite results as Prometheus metrics in the
// node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gotrs-io/ui-smoke/internal/scenario"
	"github.com/gotrs-io/ui-smoke/internal/suite"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry        *prometheus.Registry
	scenarios       *prometheus.CounterVec
	scenarioSeconds *prometheus.HistogramVec
	stepFailures    *prometheus.CounterVec
	suiteSeconds    prometheus.Gauge
	lastRun         prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ui_smoke_scenarios_total",
			Help: "Scenarios run, by terminal status.",
		}, []string{"status"}),
		scenarioSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ui_smoke_scenario_duration_seconds",
			Help:    "Wall-clock duration of executed scenarios.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"scenario"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ui_smoke_step_failures_total",
			Help: "Failed steps, by failure kind.",
		}, []string{"kind"}),
		suiteSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ui_smoke_suite_duration_seconds",
			Help: "Duration of the last suite run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ui_smoke_last_run_timestamp_seconds",
			Help: "Unix time the last suite run started.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ui_smoke_last_run_success",
			Help: "1 if every scenario of the last run passed, else 0.",
		}),
	}
	reg.MustRegister(m.scenarios, m.scenarioSeconds, m.stepFailures, m.suiteSeconds, m.lastRun, m.lastSuccess)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Record folds a suite report into the collectors.
func (m *Metrics) Record(r *suite.Report) {
	for _, res := range r.Results {
		m.scenarios.WithLabelValues(string(res.Status)).Inc()
		if res.Status != scenario.StatusSkipped {
			m.scenarioSeconds.WithLabelValues(res.ScenarioID).Observe(res.Elapsed.Seconds())
		}
		switch res.Status {
		case scenario.StatusFailed:
			m.stepFailures.WithLabelValues(res.Failure).Inc()
		case scenario.StatusErrored:
			m.stepFailures.WithLabelValues("engine").Inc()
		}
	}
	m.suiteSeconds.Set(r.Elapsed.Seconds())
	m.lastRun.Set(float64(r.Started.Unix()))
	if r.OK() {
		m.lastSuccess.Set(1)
	} else {
		m.lastSuccess.Set(0)
	}
}

// WriteTextfile writes the gathered metrics atomically to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
