package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_actions_total",
		Help: "Console actions dispatched, by action type and outcome.",
	}, []string{"action", "outcome"})

	actionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_action_duration_seconds",
		Help:    "Time spent applying a console action, remote calls included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	busyForms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "console_busy_forms",
		Help: "Number of form submissions currently in flight.",
	})
)

func observeAction(action string, err error, d time.Duration) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrBusy):
		outcome = "busy"
	case err != nil:
		outcome = "error"
	}
	actionsTotal.WithLabelValues(action, outcome).Inc()
	actionDuration.WithLabelValues(action).Observe(d.Seconds())
}

func setBusyGauge(n int) {
	busyForms.Set(float64(n))
}
