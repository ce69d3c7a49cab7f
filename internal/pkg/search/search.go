// Package search builds article search predicates.
//
// A predicate is an Expr tree of Cond leaves joined by And and Or. The tree is
// storage neutral; persistence adapters compile it to their query language.
// An empty Or matches nothing and an empty And matches everything.
package search

import (
	"strings"
	"time"
)

const (
	// DefaultSearchTimeout bounds every search and listing query.
	DefaultSearchTimeout = 5 * time.Second

	// MaxQueryLength is the maximum length of a search value.
	MaxQueryLength = 100
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeILIKE escapes LIKE wildcards in s and wraps it for a substring match.
// The result is meant to be bound as a parameter of "col ILIKE $n".
func EscapeILIKE(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
