package pagination

// Metadata contains pagination metadata included in API responses.
// Query is the request query string without the page parameter; Next and Previous
// are ready-to-use query strings ("?search=go&page=3") or empty when absent.
type Metadata struct {
	Total       int64  `json:"total"`       // Total number of items across all pages
	Page        int    `json:"page"`        // Current page number (1-based)
	Limit       int    `json:"limit"`       // Configured page size
	TotalPages  int    `json:"total_pages"` // Number of pages after orphan folding
	HasNext     bool   `json:"has_next"`
	HasPrevious bool   `json:"has_previous"`
	Query       string `json:"query"`
	Next        string `json:"next,omitempty"`
	Previous    string `json:"previous,omitempty"`
}
