package pathutil

import (
	"regexp"
	"strings"
)

// routes with an {id} segment. Everything else is already a fixed label.
var routes = []string{
	"/articles/{id}",
	"/articles/{id}/comments",
	"/articles/{id}/delete",
	"/comments/{id}",
	"/comments/{id}/delete",
	"/categories/{id}",
	"/categories/{id}/delete",
	"/accounts/users/{id}",
	"/accounts/users/{id}/password",
}

type route struct {
	re    *regexp.Regexp
	label string
}

var compiled = compile(routes)

func compile(patterns []string) []route {
	out := make([]route, 0, len(patterns))
	for _, p := range patterns {
		expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(p), `\{id\}`, `\d+`) + "$"
		out = append(out, route{
			re:    regexp.MustCompile(expr),
			label: strings.ReplaceAll(p, "{id}", ":id"),
		})
	}
	return out
}

// NormalizePath turns a request path into a metric and log label:
// /articles/123/?page=2 becomes /articles/:id. Paths that match no route
// with an id are returned without query string and trailing slash.
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range compiled {
		if r.re.MatchString(path) {
			return r.label
		}
	}
	return path
}
