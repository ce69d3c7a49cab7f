// Package logging builds the slog loggers of the API and worker binaries.
//
//	logger := logging.NewLogger(cfg.SlogLevel())
//	slog.SetDefault(logger)
//
//	func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    log := logging.WithRequestID(r.Context(), h.Logger)
//	    log.Info("article created", slog.Int64("article_id", id))
//	}
package logging
