// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics track application-specific operations
var (
	// ArticlesTotal tracks articles in the database by status
	ArticlesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
		[]string{"status"},
	)

	// ArticlesCreatedTotal counts created articles
	ArticlesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_created_total",
			Help: "Total number of articles created",
		},
	)

	// ArticlesArchivedTotal counts archive transitions
	ArticlesArchivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_archived_total",
			Help: "Total number of articles archived",
		},
	)

	// CommentsCreatedTotal counts comments by entry point
	CommentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments created",
		},
		[]string{"via"}, // via: form|article
	)

	// SearchesTotal counts full searches
	SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "article_searches_total",
			Help: "Total number of full article searches",
		},
	)

	// SearchResults observes the match count of full searches
	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_search_results",
			Help:    "Number of articles matched by a full search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
		},
	)

	// RegistrationsTotal counts new accounts
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_registrations_total",
			Help: "Total number of registered accounts",
		},
	)

	// ActivationsTotal counts activation attempts by result
	ActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_activations_total",
			Help: "Total number of account activation attempts",
		},
		[]string{"result"}, // result: success, unknown_token
	)

	// LoginsTotal counts login attempts by result
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"}, // result: success, failure, rate_limited
	)

	// PurgedRowsTotal counts rows removed by the purge job
	PurgedRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purged_rows_total",
			Help: "Total number of expired rows removed by the worker",
		},
		[]string{"kind"}, // kind: sessions, activation_tokens, inactive_users
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
