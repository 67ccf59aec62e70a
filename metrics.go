package moreremesas

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests  *prometheus.CounterVec
	attempts  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

// newMetrics builds the client collectors and registers them on reg when it
// is not nil. Collectors already registered by another client are reused.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moreremesas_requests_total",
				Help: "Total client operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moreremesas_request_attempts_total",
				Help: "Total HTTP attempts by operation and status",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:                            "moreremesas_request_duration_ms",
				Help:                            "HTTP attempt duration in milliseconds",
				NativeHistogramBucketFactor:     1.1,
				NativeHistogramMaxBucketNumber:  100,
				NativeHistogramMinResetDuration: 1 * time.Hour,
			},
			[]string{"operation"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moreremesas_token_refreshes_total",
				Help: "Total access token refreshes by result",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		m.requests = register(reg, m.requests)
		m.attempts = register(reg, m.attempts)
		m.duration = register(reg, m.duration)
		m.refreshes = register(reg, m.refreshes)
	}

	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) recordRequest(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.requests.WithLabelValues(op, outcome).Inc()
}

func (m *metrics) recordAttempt(op string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.attempts.WithLabelValues(op, label).Inc()
	m.duration.WithLabelValues(op).Observe(float64(d.Milliseconds()))
}

func (m *metrics) recordRefresh(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(result).Inc()
}
