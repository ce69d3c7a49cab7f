package pagination

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// PageParam is the query parameter carrying the page number.
const PageParam = "page"

// LastPage is the page parameter value that selects the final page.
const LastPage = "last"

// Params represents pagination query parameters from an HTTP request.
type Params struct {
	Page  int        // 1-based page number, ignored when Last is set
	Last  bool       // page=last
	Query url.Values // remaining query parameters, used to build links
}

// ParseQueryParams parses the page parameter from the request query string.
// A missing page means page 1.
//
// Returns an error if page is neither a positive integer nor "last".
func ParseQueryParams(r *http.Request) (Params, error) {
	return ParseValues(r.URL.Query())
}

// ParseValues is ParseQueryParams for already parsed values.
func ParseValues(values url.Values) (Params, error) {
	params := Params{Page: 1, Query: withoutPage(values)}

	pageStr := values.Get(PageParam)
	if pageStr == "" {
		return params, nil
	}
	if pageStr == LastPage {
		params.Last = true
		return params, nil
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
	}
	params.Page = page
	if err := params.Validate(); err != nil {
		return Params{Page: 1, Query: params.Query}, fmt.Errorf("invalid query parameter: %w", err)
	}
	return params, nil
}

func withoutPage(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		if k == PageParam {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}
