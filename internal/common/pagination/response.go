package pagination

// Response is a generic paginated response wrapper.
// T is the type of data items (e.g., ArticleDTO, CommentDTO).
type Response[T any] struct {
	Data       []T      `json:"data"`       // Array of data items for the current page
	Pagination Metadata `json:"pagination"` // Pagination metadata (total, page, links, etc.)
}

// NewResponse creates a new paginated response with data and metadata.
func NewResponse[T any](data []T, metadata Metadata) Response[T] {
	if data == nil {
		data = []T{}
	}
	return Response[T]{
		Data:       data,
		Pagination: metadata,
	}
}

// Page is one page of domain items produced by a store query.
type Page[T any] struct {
	Items    []T
	Metadata Metadata
}

// Map converts the items of p with fn, keeping the metadata.
func Map[T, U any](p Page[T], fn func(T) U) Response[U] {
	out := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return NewResponse(out, p.Metadata)
}
