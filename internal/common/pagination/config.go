// Package pagination provides page windows with orphan handling, query parsing
// and the paginated response envelope shared by every listing.
package pagination

import (
	"os"
	"strconv"
)

// Config holds the page window of each listing.
// These values can be loaded from environment variables.
type Config struct {
	Index           Window // active article listing
	Search          Window // full article search
	ArticleComments Window // comments on an article detail page
	Comments        Window // comment listing
	Categories      Window // category listing
}

// DefaultConfig returns the default pagination configuration.
func DefaultConfig() Config {
	return Config{
		Index:           Window{Size: 5, Orphans: 1},
		Search:          Window{Size: 5, Orphans: 2},
		ArticleComments: Window{Size: 3, Orphans: 0},
		Comments:        Window{Size: 5, Orphans: 1},
		Categories:      Window{Size: 10, Orphans: 0},
	}
}

// LoadFromEnv loads pagination config from environment variables.
// Supported environment variables, each with a _SIZE and an _ORPHANS variant:
//   - PAGINATION_INDEX
//   - PAGINATION_SEARCH
//   - PAGINATION_ARTICLE_COMMENTS
//   - PAGINATION_COMMENTS
//   - PAGINATION_CATEGORIES
//
// Falls back to DefaultConfig() values for unset or invalid variables.
func LoadFromEnv() Config {
	def := DefaultConfig()
	return Config{
		Index:           windowFromEnv("PAGINATION_INDEX", def.Index),
		Search:          windowFromEnv("PAGINATION_SEARCH", def.Search),
		ArticleComments: windowFromEnv("PAGINATION_ARTICLE_COMMENTS", def.ArticleComments),
		Comments:        windowFromEnv("PAGINATION_COMMENTS", def.Comments),
		Categories:      windowFromEnv("PAGINATION_CATEGORIES", def.Categories),
	}
}

func windowFromEnv(prefix string, def Window) Window {
	w := Window{
		Size:    getEnvAsInt(prefix+"_SIZE", def.Size),
		Orphans: getEnvAsInt(prefix+"_ORPHANS", def.Orphans),
	}
	if w.Validate() != nil {
		return def
	}
	return w
}

// getEnvAsInt retrieves an environment variable and parses it as an integer.
// Returns the default value if the variable is not set or cannot be parsed.
func getEnvAsInt(key string, defaultValue int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultValue
	}
	return val
}
