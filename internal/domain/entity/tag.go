package entity

import "strings"

// Tag is a label shared by many articles. Names are unique.
type Tag struct {
	ID   int64
	Name string
}

// MaxTagNameLength bounds a single tag name.
const MaxTagNameLength = 50

// ParseTagNames splits a comma separated tag string into tag names.
// Segments are trimmed, blank segments are dropped and duplicates keep
// their first position, so "go, db,,go" yields ["go", "db"].
func ParseTagNames(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// JoinTagNames renders tag names back into the comma separated form accepted by ParseTagNames.
func JoinTagNames(tags []Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
