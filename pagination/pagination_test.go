package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClamps(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"zero values fall back to defaults", Params{}, Params{Page: 1, PerPage: 10}},
		{"negative page clamps to first", Params{Page: -3, PerPage: 20}, Params{Page: 1, PerPage: 20}},
		{"zero page clamps to first", Params{Page: 0, PerPage: 20}, Params{Page: 1, PerPage: 20}},
		{"negative limit falls back to default", Params{Page: 2, PerPage: -1}, Params{Page: 2, PerPage: 10}},
		{"oversized limit clamps to max", Params{Page: 2, PerPage: 5000}, Params{Page: 2, PerPage: 100}},
		{"valid values pass through", Params{Page: 3, PerPage: 25}, Params{Page: 3, PerPage: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PerPage: 10}.Offset())
	assert.Equal(t, 10, Params{Page: 2, PerPage: 10}.Offset())
	assert.Equal(t, 50, Params{Page: 3, PerPage: 25}.Offset())
}

func TestNewPageTotals(t *testing.T) {
	params := Params{Page: 1, PerPage: 2}.Normalize()

	// 3 matches at page size 2: two pages, first page holds two items.
	page := NewPage([]string{"intro to go", "intro to sql"}, params, 3)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PerPage)
}

func TestNewPageExactDivision(t *testing.T) {
	page := NewPage(make([]int, 10), Params{Page: 1, PerPage: 10}, 20)
	assert.Equal(t, int64(2), page.TotalPages)
}

func TestNewPageEmptyResult(t *testing.T) {
	page := NewPage[string](nil, Params{Page: 1, PerPage: 10}, 0)
	assert.Equal(t, int64(0), page.TotalCount)
	assert.Equal(t, int64(0), page.TotalPages)
	// Empty pages must serialize as [], never null.
	assert.NotNil(t, page.Items)
	assert.Len(t, page.Items, 0)
}
