package courses

// CreateCourseRequest is the payload for creating a course. Mentor and
// category are optional references; when given they must resolve.
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=128"`
	Description string  `json:"description" validate:"required"`
	Slug        string  `json:"slug" validate:"required,min=3,max=128"`
	CategoryID  *int    `json:"category_id" validate:"omitempty,gt=0"`
	Lessons     int     `json:"lessons" validate:"gte=0"`
	Image       *string `json:"image"`
	Price       float64 `json:"price" validate:"gte=0"`
	MentorID    *int    `json:"mentor_id" validate:"omitempty,gt=0"`
}

// UpdateCourseRequest carries the closed set of updatable course fields.
// Pointer fields distinguish "leave alone" (nil) from "set to this value",
// the Go stand-in for the original's patch-whatever-arrived object merge,
// minus its ability to smuggle in arbitrary keys.
type UpdateCourseRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=128"`
	Description *string  `json:"description"`
	Slug        *string  `json:"slug" validate:"omitempty,min=3,max=128"`
	CategoryID  *int     `json:"category_id" validate:"omitempty,gt=0"`
	Lessons     *int     `json:"lessons" validate:"omitempty,gte=0"`
	Image       *string  `json:"image"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	MentorID    *int     `json:"mentor_id" validate:"omitempty,gt=0"`
}

// SearchCoursesRequest is the body of the POST search/listing endpoint:
// an optional title substring plus paging.
type SearchCoursesRequest struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
