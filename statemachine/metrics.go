package statemachine

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric outcome constants.
const (
	outcomeCompleted = "completed"
	outcomeAborted   = "aborted"
)

// Metric definitions with appropriate labels.
var (
	// runsTotal tracks finished runs by machine and outcome (completed or aborted).
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_runs_total",
		Help: "Total number of state machine runs by machine and outcome (completed or aborted)",
	}, []string{"machine", "outcome"})

	// runSteps tracks how many inputs each run consumed.
	runSteps = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statemachine_run_steps",
		Help:    "Number of inputs processed per run by machine and outcome",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"machine", "outcome"})

	// runDuration tracks end-to-end run time.
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statemachine_run_duration_seconds",
		Help:    "Duration of state machine runs by machine and outcome",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"machine", "outcome"})

	// errorsTotal tracks recorded errors by kind; recovered is "true", "false",
	// or "n/a" for structural errors that never reach the error handler.
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_errors_total",
		Help: "Total number of errors recorded by machine, error kind, and whether the error handler recovered it",
	}, []string{"machine", "kind", "recovered"})
)

func sanitizeMachine(name string) string {
	if name == "" {
		return "unnamed"
	}

	return name
}

func outcomeLabel(aborted bool) string {
	if aborted {
		return outcomeAborted
	}

	return outcomeCompleted
}

func recordCallbackErrorMetric(machine string, err error, recovered bool) {
	errorsTotal.WithLabelValues(sanitizeMachine(machine), ErrorKind(err), strconv.FormatBool(recovered)).Inc()
}

func recordStructuralErrorMetric(machine string, err error) {
	errorsTotal.WithLabelValues(sanitizeMachine(machine), ErrorKind(err), "n/a").Inc()
}

func recordRunMetrics(machine string, aborted bool, steps int, seconds float64) {
	outcome := outcomeLabel(aborted)
	name := sanitizeMachine(machine)

	runsTotal.WithLabelValues(name, outcome).Inc()
	runSteps.WithLabelValues(name, outcome).Observe(float64(steps))
	runDuration.WithLabelValues(name, outcome).Observe(seconds)
}
