package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "membership_api_requests_total",
		Help: "Requests sent to the membership API, by operation and status code.",
	}, []string{"op", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "membership_api_request_duration_seconds",
		Help:    "Latency of membership API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
