// Package form turns raw request field maps into validated input for the usecases.
// Every form is built from url.Values, validated with ozzo-validation and reports
// failures as *Invalid, which carries the echoed values and per-field error codes.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blog-platform/internal/domain/entity"
)

// NonField is the key under which errors that belong to no single field are reported.
const NonField = "__all__"

// FieldError is one validation failure of a field.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors maps field names to their validation failures.
type Errors map[string][]FieldError

// Add appends a failure for field.
func (e Errors) Add(field, code, message string) {
	e[field] = append(e[field], FieldError{Code: code, Message: message})
}

// Merge appends every failure of other.
func (e Errors) Merge(other Errors) {
	for field, list := range other {
		e[field] = append(e[field], list...)
	}
}

// Has reports whether field has at least one failure.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Codes returns the codes recorded for field, in order.
func (e Errors) Codes(field string) []string {
	codes := make([]string, 0, len(e[field]))
	for _, fe := range e[field] {
		codes = append(codes, fe.Code)
	}
	return codes
}

// Invalid is returned when a form fails validation. No mutation has happened.
type Invalid struct {
	Values url.Values
	Errors Errors
}

// Error lists the failures sorted by field name.
func (e *Invalid) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		for _, fe := range e.Errors[f] {
			parts = append(parts, fmt.Sprintf("%s: %s", f, fe.Message))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, entity.ErrValidationFailed) hold.
func (e *Invalid) Unwrap() error {
	return entity.ErrValidationFailed
}

// NewInvalid builds an *Invalid. Fields named in secret are removed from the echoed values.
func NewInvalid(values url.Values, errs Errors, secret ...string) *Invalid {
	echo := make(url.Values, len(values))
	for k, v := range values {
		echo[k] = append([]string(nil), v...)
	}
	for _, s := range secret {
		delete(echo, s)
	}
	return &Invalid{Values: echo, Errors: errs}
}

// Single builds an *Invalid with one failure.
func Single(values url.Values, field, code, message string, secret ...string) *Invalid {
	errs := Errors{}
	errs.Add(field, code, message)
	return NewInvalid(values, errs, secret...)
}

// AsInvalid reports whether err is, or wraps, an *Invalid.
func AsInvalid(err error) (*Invalid, bool) {
	var inv *Invalid
	if errors.As(err, &inv) {
		return inv, true
	}
	return nil, false
}

// FromValidation converts the error returned by ozzo-validation (or a domain
// *entity.ValidationError) into Errors. Internal validation errors are returned as-is.
func FromValidation(err error) (Errors, error) {
	errs := Errors{}
	if err == nil {
		return errs, nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return nil, err
	}
	collect(errs, NonField, err)
	return errs, nil
}

func collect(errs Errors, field string, err error) {
	var (
		verrs  validation.Errors
		verr   validation.Error
		domain *entity.ValidationError
	)
	switch {
	case errors.As(err, &verrs):
		keys := make([]string, 0, len(verrs))
		for k := range verrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if verrs[k] != nil {
				collect(errs, k, verrs[k])
			}
		}
	case errors.As(err, &domain):
		target := field
		if domain.Field != "" && field == NonField {
			target = domain.Field
		}
		errs.Add(target, domain.ErrorCode(), domain.Message)
	case errors.As(err, &verr):
		errs.Add(field, normalizeCode(verr.Code()), verr.Error())
	default:
		errs.Add(field, "invalid", err.Error())
	}
}

// normalizeCode strips the library prefix so codes read "required" rather than "validation_required".
func normalizeCode(code string) string {
	code = strings.TrimPrefix(code, "validation_")
	if code == "" {
		return "invalid"
	}
	return code
}
