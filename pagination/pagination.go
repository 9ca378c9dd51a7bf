// Package pagination provides the shared page/limit handling used by every
// listing endpoint. The original Express controllers leaned on
// mongoose-paginate's permissive behavior (`page || 1`, `limit || 10`); this
// package reproduces that contract explicitly: out-of-range parameters are
// clamped, never rejected, so a caller can never request page 0 or an
// unbounded page size.
package pagination

// Defaults and bounds applied by Normalize. MaxPerPage exists so a single
// request cannot ask the database for an unbounded result set.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Params carries the caller-supplied pagination inputs.
// Zero values are meaningful ("not specified") and are replaced by defaults.
type Params struct {
	Page    int `json:"page" example:"1"`
	PerPage int `json:"limit" example:"10"`
}

// Normalize clamps the parameters into their allowed ranges and returns the
// result. Clamping instead of failing matches the observed behavior of the
// original API: `page=0`, negative pages and absent limits all silently fall
// back to the defaults.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset converts the (1-based) page number into a SQL OFFSET.
// Callers must Normalize first; Offset assumes valid inputs.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is the envelope returned by every paginated listing.
// The shape mirrors what mongoose-paginate returned to the original frontend:
// the items plus enough bookkeeping to render pagination controls.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page" example:"1"`
	PerPage    int   `json:"limit" example:"10"`
	TotalCount int64 `json:"total_count" example:"42"`
	TotalPages int64 `json:"total_pages" example:"5"`
}

// NewPage assembles a Page from a slice of items, the normalized params the
// query ran with, and the total row count reported by the database.
func NewPage[T any](items []T, params Params, totalCount int64) *Page[T] {
	// Integer ceiling division; zero rows means zero pages.
	totalPages := totalCount / int64(params.PerPage)
	if totalCount%int64(params.PerPage) != 0 {
		totalPages++
	}
	// Never return a nil slice: the JSON encoding should be `[]`, not `null`,
	// matching what the original API sent for empty result pages.
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
