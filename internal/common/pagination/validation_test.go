package pagination_test

import (
	"testing"

	"blog-platform/internal/common/pagination"
)

func TestParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		params    pagination.Params
		wantError bool
	}{
		{name: "valid page", params: pagination.Params{Page: 1}},
		{name: "last ignores page", params: pagination.Params{Page: 0, Last: true}},
		{name: "zero page", params: pagination.Params{Page: 0}, wantError: true},
		{name: "negative page", params: pagination.Params{Page: -1}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantError && err == nil {
				t.Errorf("Validate() error = nil, wantError = true")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() error = %v, wantError = false", err)
			}
		})
	}
}

func TestParams_WithDefaults(t *testing.T) {
	t.Parallel()

	got := pagination.Params{Page: -5}.WithDefaults()
	if got.Page != 1 {
		t.Errorf("WithDefaults() Page = %d, want 1", got.Page)
	}
	if got.Query == nil {
		t.Error("WithDefaults() Query = nil, want empty values")
	}

	kept := pagination.Params{Page: 4}.WithDefaults()
	if kept.Page != 4 {
		t.Errorf("WithDefaults() Page = %d, want 4", kept.Page)
	}
}
