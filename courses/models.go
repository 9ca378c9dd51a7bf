// Package courses implements the course catalog: CRUD, title search, and the
// category/mentor listing views. Courses reference a category and a mentor by
// id; reads enrich those references with display fields much like a Mongoose
// populate, except the join happens in SQL at read time.
package courses

import "time"

// Course represents a course record. CategoryName and MentorUsername are
// read-time enrichments from LEFT JOINs; a dangling reference leaves them nil
// rather than failing the whole page.
type Course struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Slug        string  `json:"slug"`
	CategoryID  *int    `json:"category_id"`
	Lessons     int     `json:"lessons"`
	Image       *string `json:"image,omitempty"`
	Price       float64 `json:"price"`
	MentorID    *int    `json:"mentor_id"`

	CategoryName   *string `json:"category_name,omitempty"`
	MentorUsername *string `json:"mentor_username,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
