package pagination

// CalculateOffset calculates the database OFFSET value based on page number and page size.
// Page numbers are 1-based, so page 1 has offset 0.
//
// Formula: offset = (page - 1) * size
func CalculateOffset(page, size int) int {
	return (page - 1) * size
}

// CalculateTotalPages calculates the number of pages for total items.
// A trailing page holding orphans items or fewer is folded into the page before it.
//
// Special cases:
//   - If total is 0, returns 1 (page 1 always exists)
//   - If total <= size+orphans, returns 1
//   - Otherwise, returns ceil((total - orphans) / size)
//
// Examples:
//   - Total 0, Size 5, Orphans 1 -> 1 page
//   - Total 10, Size 5, Orphans 1 -> 2 pages
//   - Total 11, Size 5, Orphans 1 -> 2 pages (5 + 6)
//   - Total 12, Size 5, Orphans 1 -> 3 pages (5 + 5 + 2)
func CalculateTotalPages(total int64, size, orphans int) int {
	if total == 0 {
		return 1
	}
	hits := total - int64(orphans)
	if hits < 1 {
		hits = 1
	}
	// Ceiling division: (hits + size - 1) / size
	return int((hits + int64(size) - 1) / int64(size))
}

// CalculateBounds returns the OFFSET and LIMIT for page given total items.
// The last page absorbs the orphans, so its limit may exceed size.
func CalculateBounds(page, size, orphans int, total int64) (offset, limit int) {
	bottom := int64(CalculateOffset(page, size))
	top := bottom + int64(size)
	if top+int64(orphans) >= total {
		top = total
	}
	if top < bottom {
		return int(bottom), 0
	}
	return int(bottom), int(top - bottom)
}
