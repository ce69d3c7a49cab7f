package pagination

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts the total number of pagination requests.
	// Labels: listing, status (HTTP status code), page_range (page bucket: 1-10, 11-50, etc.)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_pagination_requests_total",
			Help: "Total number of pagination requests",
		},
		[]string{"listing", "status", "page_range"},
	)

	// DurationSeconds tracks request duration distribution.
	// Labels: listing, operation (handler, count, select)
	DurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blog_pagination_duration_seconds",
			Help:    "Paginated query duration distribution",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
		[]string{"listing", "operation"},
	)

	// TotalCount tracks the last observed total of each listing.
	TotalCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blog_listing_total_count",
			Help: "Last observed total number of items per listing",
		},
		[]string{"listing"},
	)

	// ErrorsTotal counts pagination errors by type.
	// Labels: listing, type (validation, out_of_range, database, timeout)
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_pagination_errors_total",
			Help: "Total number of pagination errors",
		},
		[]string{"listing", "type"},
	)
)

// RecordRequest records a pagination request metric.
func RecordRequest(listing string, statusCode int, page int) {
	RequestsTotal.WithLabelValues(
		listing,
		fmt.Sprintf("%d", statusCode),
		getPageRangeBucket(page),
	).Inc()
}

// RecordDuration records operation duration in seconds.
func RecordDuration(listing, operation string, duration float64) {
	DurationSeconds.WithLabelValues(listing, operation).Observe(duration)
}

// UpdateTotalCount updates the listing count gauge.
func UpdateTotalCount(listing string, count int64) {
	TotalCount.WithLabelValues(listing).Set(float64(count))
}

// RecordError records an error metric.
// errorType should be one of: "validation", "out_of_range", "database", "timeout"
func RecordError(listing, errorType string) {
	ErrorsTotal.WithLabelValues(listing, errorType).Inc()
}

// getPageRangeBucket returns the page range bucket for a given page number.
func getPageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
