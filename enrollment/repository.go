// Package enrollment maintains the membership edges between users and
// courses. An enrollment is a set membership, not a counted event: enrolling
// twice leaves one edge, unenrolling a non-member is a no-op that still
// succeeds.
package enrollment

import "context"

// Repository defines storage for enrollment edges. AddEdge and RemoveEdge are
// idempotent at the storage level, which is what makes concurrent duplicate
// requests safe without any locking above the database.
type Repository interface {
	// AddEdge records the user/course edge. Adding an edge that already
	// exists is not an error and does not duplicate it.
	AddEdge(ctx context.Context, userID, courseID int) error

	// RemoveEdge deletes the edge if present. Removing an absent edge is
	// not an error.
	RemoveEdge(ctx context.Context, userID, courseID int) error

	// CoursesByUser lists the course ids the user is enrolled in, ascending.
	CoursesByUser(ctx context.Context, userID int) ([]int, error)
}
