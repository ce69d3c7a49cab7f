package crud

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/form"
	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/observability/logging"
)

// Listing observes one paginated request: metrics per listing name and a
// structured log line when it finishes.
type Listing struct {
	Name   string
	Logger *slog.Logger
	start  time.Time
	r      *http.Request
	params pagination.Params
}

// StartListing begins observing a listing request.
func StartListing(r *http.Request, name string, logger *slog.Logger, params pagination.Params) *Listing {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Listing{
		Name:   name,
		Logger: logging.WithRequestID(r.Context(), logger),
		start:  time.Now(),
		r:      r,
		params: params,
	}
	pagination.LogRequest(l.Logger, requestid.FromContext(r.Context()), name, params)
	return l
}

// Done records a served page.
func (l *Listing) Done(meta pagination.Metadata, returned int) {
	pagination.RecordRequest(l.Name, http.StatusOK, meta.Page)
	pagination.LogResponse(l.Logger, requestid.FromContext(l.r.Context()), l.Name, meta, returned,
		time.Since(l.start), http.StatusOK)
}

// Fail records err and writes the error response.
func (l *Listing) Fail(w http.ResponseWriter, err error) {
	kind := ErrorKind(err)
	pagination.RecordError(l.Name, kind)
	pagination.RecordRequest(l.Name, statusFor(kind), l.params.Page)
	if kind == "database" || kind == "timeout" {
		pagination.LogError(l.Logger, requestid.FromContext(l.r.Context()), l.Name, l.params, err, kind)
	}
	WriteError(w, l.r, err)
}

// ErrorKind classifies a listing error for the pagination error metric.
func ErrorKind(err error) string {
	if _, ok := form.AsInvalid(err); ok {
		return "validation"
	}
	switch {
	case errors.Is(err, pagination.ErrPageOutOfRange):
		return "out_of_range"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "database"
	}
}

func statusFor(kind string) int {
	switch kind {
	case "validation":
		return http.StatusBadRequest
	case "out_of_range":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
