package pagination

import "strconv"

// Window is the fixed page geometry of a listing.
// A trailing page with Orphans items or fewer is merged into the previous page.
type Window struct {
	Size    int
	Orphans int
}

// QueryParams represents the calculated query parameters for database queries.
type QueryParams struct {
	Offset int
	Limit  int
}

// Resolve turns request params and the total item count into the slice to fetch
// and the metadata to return. Page 1 always resolves, even when total is 0.
// Any other page beyond the last one yields ErrPageOutOfRange.
func (w Window) Resolve(params Params, total int64) (QueryParams, Metadata, error) {
	params = params.WithDefaults()
	totalPages := CalculateTotalPages(total, w.Size, w.Orphans)

	page := params.Page
	if params.Last {
		page = totalPages
	}
	if page > totalPages && page != 1 {
		return QueryParams{}, Metadata{}, ErrPageOutOfRange
	}

	offset, limit := CalculateBounds(page, w.Size, w.Orphans, total)
	query := params.Query.Encode()

	meta := Metadata{
		Total:       total,
		Page:        page,
		Limit:       w.Size,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
		Query:       query,
	}
	if meta.HasNext {
		meta.Next = pageLink(query, page+1)
	}
	if meta.HasPrevious {
		meta.Previous = pageLink(query, page-1)
	}
	return QueryParams{Offset: offset, Limit: limit}, meta, nil
}

func pageLink(query string, page int) string {
	if query == "" {
		return "?" + PageParam + "=" + strconv.Itoa(page)
	}
	return "?" + query + "&" + PageParam + "=" + strconv.Itoa(page)
}
