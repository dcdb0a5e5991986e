package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entrada_http_requests_total",
		Help: "Requests HTTP por método, path y status.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "entrada_http_request_duration_seconds",
		Help:    "Duración de requests HTTP.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entrada_login_attempts_total",
		Help: "Intentos de login por provider y resultado (success|rejected|error).",
	}, []string{"provider", "result"})
)

func observeRequest(method, path string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(path).Observe(d.Seconds())
}

// ObserveLogin registra el resultado de un intento de login social.
func ObserveLogin(provider, result string) {
	loginAttemptsTotal.WithLabelValues(provider, result).Inc()
}
