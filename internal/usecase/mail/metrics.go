package mail

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	// mailDispatchedTotal counts messages handed to a channel.
	mailDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_mail_dispatched_total",
			Help: "Total number of mails dispatched to a channel",
		},
		[]string{"channel"},
	)

	// mailSentTotal counts delivery outcomes.
	mailSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_mail_sent_total",
			Help: "Total number of mail delivery attempts by outcome",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	mailDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blog_mail_duration_seconds",
			Help:    "Mail delivery duration in seconds, retries included",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"channel"},
	)

	mailDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_mail_dropped_total",
			Help: "Total number of dropped mails",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open|shutdown
	)

	mailCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blog_mail_circuit_state",
			Help: "Mail channel circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"channel"},
	)

	activeDeliveries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_mail_active_goroutines",
			Help: "Number of in-flight mail deliveries",
		},
	)

	channelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_mail_channels_enabled",
			Help: "Number of enabled mail channels",
		},
	)
)

// RecordDispatch increments the dispatch counter of channel.
func RecordDispatch(channel string) {
	mailDispatchedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess records a delivered mail.
func RecordSuccess(channel string, duration time.Duration) {
	mailSentTotal.WithLabelValues(channel, "success").Inc()
	mailDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a mail that could not be delivered.
func RecordFailure(channel string, duration time.Duration) {
	mailSentTotal.WithLabelValues(channel, "failure").Inc()
	mailDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDropped records a mail skipped before delivery.
func RecordDropped(channel, reason string) {
	mailDroppedTotal.WithLabelValues(channel, reason).Inc()
}

// RecordCircuitState exports the breaker state of channel.
func RecordCircuitState(channel string, state gobreaker.State) {
	mailCircuitState.WithLabelValues(channel).Set(float64(state))
}

func incrementActive() { activeDeliveries.Inc() }
func decrementActive() { activeDeliveries.Dec() }

// SetChannelsEnabled exports the number of enabled channels.
func SetChannelsEnabled(count int) {
	channelsEnabled.Set(float64(count))
}
