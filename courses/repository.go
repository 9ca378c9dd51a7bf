package courses

import (
	"context"

	"github.com/user/learnhub-go/pagination"
)

// UpdateFields is the closed set of course fields an update may touch.
// A nil pointer means "leave the field as it is".
type UpdateFields struct {
	Title       *string
	Description *string
	Slug        *string
	CategoryID  *int
	Lessons     *int
	Image       *string
	Price       *float64
	MentorID    *int
}

// Repository defines data access for courses. Listing methods return the
// matching slice plus the total match count so the caller can build a page
// envelope; they never return a nil slice for an empty result.
type Repository interface {
	Create(ctx context.Context, course *Course) (*Course, error)
	GetByID(ctx context.Context, id int) (*Course, error)
	Update(ctx context.Context, id int, fields UpdateFields) (*Course, error)
	Delete(ctx context.Context, id int) error

	// SearchByTitle lists courses whose title contains the pattern,
	// case-insensitively and unanchored. An empty pattern matches everything.
	SearchByTitle(ctx context.Context, pattern string, params pagination.Params) ([]Course, int64, error)
	ByCategory(ctx context.Context, categoryID int, params pagination.Params) ([]Course, int64, error)
	ByMentor(ctx context.Context, mentorID int, params pagination.Params) ([]Course, int64, error)

	// EnrolledByUser lists the courses the user is enrolled in, enriched like
	// every other read.
	EnrolledByUser(ctx context.Context, userID int) ([]Course, error)
}
