// Package users encapsulates all functionality related to user management:
// the user entity, its repository, the business-logic service and the HTTP
// handlers. This follows a modular design (one feature, one package), the
// way the original split `userController.js` from the rest.
// This file defines the user entity as stored and used in business logic.
package users

import (
	"time"

	"github.com/user/learnhub-go/auth"
)

// User represents a user of the learning platform.
// This struct is analogous to the Mongoose user schema in the original backend.
type User struct {
	ID       int       `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"` // unique, stored lowercase
	Phone    string    `json:"phone,omitempty"`
	// The `json:"-"` tag means this field is ignored by `encoding/json`,
	// so the hash can never be exposed in an API response.
	HashedPassword string    `json:"-"`
	Role           auth.Role `json:"role"`
	Status         string    `json:"status"`
	// EnrolledCourses is the set of course ids the user is enrolled in.
	// Set semantics are guaranteed by the storage layer (one row per edge);
	// it is loaded on profile reads, not on list queries.
	EnrolledCourses []int     `json:"enrolled_courses,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
