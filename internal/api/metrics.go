package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grader_api_requests_total",
		Help: "Total number of grader API requests",
	}, []string{"route", "status"})

	latencyHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grader_api_latency_seconds",
		Help:    "Latency of grader API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

func recordRequest(route string, status int, start time.Time) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	latencyHistogram.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
