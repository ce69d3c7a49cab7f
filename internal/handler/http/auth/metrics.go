package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts session resolutions by result.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Session resolutions by result",
		},
		[]string{"result"}, // result: valid | anonymous | invalid | error
	)

	// authDuration tracks how long resolving a session takes.
	authDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Session resolution duration",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// sessionEvents counts sessions established and revoked.
	sessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_events_total",
			Help: "Login sessions established and revoked",
		},
		[]string{"event"},
	)

	// csrfRejections counts unsafe requests rejected by the CSRF check.
	csrfRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_csrf_rejections_total",
			Help: "Requests rejected by the CSRF check by reason",
		},
		[]string{"reason"},
	)

	// forbiddenAttempts counts requests rejected by ownership checks.
	forbiddenAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forbidden_attempts_total",
			Help: "Forbidden access attempts by method",
		},
		[]string{"method"},
	)
)

// RecordAuthRequest records a session resolution.
func RecordAuthRequest(result string) {
	authRequestsTotal.WithLabelValues(result).Inc()
}

// RecordAuthDuration records session resolution duration.
func RecordAuthDuration(durationSeconds float64) {
	authDuration.Observe(durationSeconds)
}

// RecordSessionEvent records an established or revoked session.
func RecordSessionEvent(event string) {
	sessionEvents.WithLabelValues(event).Inc()
}

// RecordCSRFRejection records a rejected unsafe request.
func RecordCSRFRejection(reason string) {
	csrfRejections.WithLabelValues(reason).Inc()
}

// RecordForbiddenAttempt records a forbidden access attempt.
func RecordForbiddenAttempt(method string) {
	forbiddenAttempts.WithLabelValues(method).Inc()
}
