package metrics

import "time"

// RecordArticleCreated counts a newly created article.
func RecordArticleCreated() {
	ArticlesCreatedTotal.Inc()
}

// RecordArticleArchived counts an article moved to the archived status.
func RecordArticleArchived() {
	ArticlesArchivedTotal.Inc()
}

// RecordCommentCreated counts a comment. via is "form" for the standalone
// comment form and "article" for the form nested under an article.
func RecordCommentCreated(via string) {
	CommentsCreatedTotal.WithLabelValues(via).Inc()
}

// RecordSearch records a full search and how many articles it matched.
func RecordSearch(matched int64) {
	SearchesTotal.Inc()
	SearchResults.Observe(float64(matched))
}

// RecordRegistration counts a new account.
func RecordRegistration() {
	RegistrationsTotal.Inc()
}

// RecordActivation records an activation attempt.
func RecordActivation(success bool) {
	result := "success"
	if !success {
		result = "unknown_token"
	}
	ActivationsTotal.WithLabelValues(result).Inc()
}

// RecordLogin records a login attempt. result should be one of
// "success", "failure" or "rate_limited".
func RecordLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

// RecordPurge records rows removed by the purge job.
func RecordPurge(kind string, rows int64) {
	PurgedRowsTotal.WithLabelValues(kind).Add(float64(rows))
}

// UpdateArticlesTotal updates the article count of status.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(status string, count int64) {
	ArticlesTotal.WithLabelValues(status).Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "purge_sessions").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
