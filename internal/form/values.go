package form

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Decode reads the raw field map of a request body. It accepts
// application/x-www-form-urlencoded and a flat JSON object; JSON numbers and
// booleans are rendered as strings and arrays become repeated values.
func Decode(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeJSON(r.Body)
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	return r.PostForm, nil
}

func decodeJSON(body io.Reader) (url.Values, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return url.Values{}, nil
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	values := make(url.Values, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case nil:
			values[key] = []string{""}
		case []any:
			for _, item := range val {
				s, err := scalar(item)
				if err != nil {
					return nil, fmt.Errorf("invalid JSON body: field %q: %w", key, err)
				}
				values.Add(key, s)
			}
		default:
			s, err := scalar(val)
			if err != nil {
				return nil, fmt.Errorf("invalid JSON body: field %q: %w", key, err)
			}
			values.Set(key, s)
		}
	}
	return values, nil
}

func scalar(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("must be a string, number or boolean")
	}
}

// Text returns the trimmed first value of key.
func Text(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

// Bool parses a checkbox style value. present is false when key is absent.
// "on", "true", "1" and "yes" are true; anything else is false.
func Bool(values url.Values, key string) (value, present bool) {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw[0])) {
	case "on", "true", "1", "yes":
		return true, true
	default:
		return false, true
	}
}

// OptionalID parses key as a positive id. An empty value yields nil.
func OptionalID(values url.Values, key string) (*int64, error) {
	raw := Text(values, key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer", key)
	}
	return &id, nil
}

// ChoiceSet is the set of ids a choice field accepts.
type ChoiceSet map[int64]struct{}

// NewChoiceSet builds a ChoiceSet from ids.
func NewChoiceSet(ids []int64) ChoiceSet {
	set := make(ChoiceSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is an accepted choice.
func (c ChoiceSet) Contains(id int64) bool {
	_, ok := c[id]
	return ok
}
