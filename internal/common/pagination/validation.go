package pagination

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrPageOutOfRange is returned for a page past the last page.
var ErrPageOutOfRange = errors.New("page out of range")

// Validate validates pagination parameters.
// Returns an error if page is less than 1 and Last is not set.
func (p Params) Validate() error {
	if !p.Last && p.Page < 1 {
		return fmt.Errorf("page must be a positive integer")
	}
	return nil
}

// WithDefaults applies default values to Params.
//
// Rules:
//   - If page <= 0, set to 1
//   - A nil Query becomes empty
func (p Params) WithDefaults() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Query == nil {
		p.Query = url.Values{}
	}
	return p
}

// Validate checks that a window has a positive size and non-negative orphans.
func (w Window) Validate() error {
	if w.Size < 1 {
		return fmt.Errorf("page size must be a positive integer")
	}
	if w.Orphans < 0 {
		return fmt.Errorf("orphans cannot be negative")
	}
	return nil
}
