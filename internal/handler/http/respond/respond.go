// Package respond writes JSON responses. Errors are mapped to status codes
// from the sentinel errors of the usecases and sanitized before they are
// shown to users.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/usecase/crud"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みのためログのみ
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the given status code and error message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeErrors are message fragments that may be shown to users as-is.
var safeErrors = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
	"forbidden",
	"out of range",
}

// SafeError sanitizes error messages before returning them to users.
// Internal errors (e.g., database errors) are returned as "internal server error",
// with details logged for debugging. Safe errors (validation errors) are returned as-is.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	isSafe := false
	lowerMsg := strings.ToLower(msg)
	for _, safe := range safeErrors {
		if strings.Contains(lowerMsg, safe) {
			isSafe = true
			break
		}
	}

	// 500番台は常に内部エラー扱い
	if code >= 500 {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// InvalidBody is the 400 answer of a rejected form: the per-field failures
// and the submitted values, minus secrets.
type InvalidBody struct {
	Errors form.Errors         `json:"errors"`
	Values map[string][]string `json:"values"`
}

// Invalid writes inv as a 400 response.
func Invalid(w http.ResponseWriter, inv *form.Invalid) {
	values := map[string][]string(inv.Values)
	if values == nil {
		values = map[string][]string{}
	}
	JSON(w, http.StatusBadRequest, InvalidBody{Errors: inv.Errors, Values: values})
}

// StatusOf maps a usecase error to its HTTP status.
func StatusOf(err error) int {
	if _, ok := form.AsInvalid(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, crud.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, crud.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, pagination.ErrPageOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status StatusOf chooses. Form failures carry
// their field errors.
func Fail(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if inv, ok := form.AsInvalid(err); ok {
		Invalid(w, inv)
		return
	}
	code := StatusOf(err)
	switch code {
	case http.StatusNotFound:
		JSON(w, code, map[string]string{"error": "not found"})
	case http.StatusForbidden:
		JSON(w, code, map[string]string{"error": "forbidden"})
	default:
		SafeError(w, code, err)
	}
}
