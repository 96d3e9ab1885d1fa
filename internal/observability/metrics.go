package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	signalsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modellerbridge",
			Subsystem: "signal",
			Name:      "received_total",
			Help:      "Inbound signals read from the orchestrator.",
		},
		[]string{"signal"},
	)
	signalsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modellerbridge",
			Subsystem: "signal",
			Name:      "sent_total",
			Help:      "Outbound messages written to the orchestrator.",
		},
		[]string{"signal"},
	)
	toolRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modellerbridge",
			Subsystem: "tool",
			Name:      "runs_total",
			Help:      "Tool run commands by outcome.",
		},
		[]string{"namespace", "mode", "outcome"},
	)
	toolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modellerbridge",
			Subsystem: "tool",
			Name:      "run_duration_seconds",
			Help:      "Tool run command duration in seconds, including the registry wait.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"namespace", "mode", "outcome"},
	)
	adminRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modellerbridge",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(signalsReceived, signalsSent, toolRuns, toolDuration, adminRequests)
	})
}

func RecordSignalReceived(signal string) {
	RegisterMetrics()
	signalsReceived.WithLabelValues(signal).Inc()
}

func RecordSignalSent(signal string) {
	RegisterMetrics()
	signalsSent.WithLabelValues(signal).Inc()
}

func RecordToolRun(namespace, mode, outcome string, duration time.Duration) {
	RegisterMetrics()
	toolRuns.WithLabelValues(namespace, mode, outcome).Inc()
	toolDuration.WithLabelValues(namespace, mode, outcome).Observe(duration.Seconds())
}

func RecordAdminRequest(method, path string, status int) {
	RegisterMetrics()
	adminRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
