package pagination

import (
	"log/slog"
	"time"
)

// LogRequest logs a pagination request with structured fields.
func LogRequest(logger *slog.Logger, requestID, listing string, params Params) {
	logger.Debug("Paginated request",
		"request_id", requestID,
		"listing", listing,
		"page", params.Page,
		"last", params.Last)
}

// LogResponse logs a pagination response with duration and status.
func LogResponse(logger *slog.Logger, requestID, listing string, meta Metadata, returnedCount int, duration time.Duration, statusCode int) {
	logger.Info("Paginated response",
		"request_id", requestID,
		"listing", listing,
		"page", meta.Page,
		"total_pages", meta.TotalPages,
		"returned_count", returnedCount,
		"duration_ms", duration.Milliseconds(),
		"status", statusCode)
}

// LogError logs a pagination error with structured fields.
func LogError(logger *slog.Logger, requestID, listing string, params Params, err error, errorType string) {
	logger.Error("Pagination error",
		"request_id", requestID,
		"listing", listing,
		"page", params.Page,
		"error", err.Error(),
		"error_type", errorType)
}
