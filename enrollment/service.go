package enrollment

import (
	"context"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/courses"
	"github.com/user/learnhub-go/users"
)

// CourseFinder and UserFinder are the narrow slices of the other
// repositories the enrollment service needs: existence checks on both edge
// endpoints, plus the enriched listing of a user's courses.
type CourseFinder interface {
	GetByID(ctx context.Context, id int) (*courses.Course, error)
	EnrolledByUser(ctx context.Context, userID int) ([]courses.Course, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int) (*users.User, error)
}

// EnrollmentService applies the enrollment business rules on top of the edge
// store.
type EnrollmentService struct {
	repo    Repository
	courses CourseFinder
	users   UserFinder
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(repo Repository, courseFinder CourseFinder, userFinder UserFinder) *EnrollmentService {
	return &EnrollmentService{repo: repo, courses: courseFinder, users: userFinder}
}

// checkEndpoints verifies both sides of the edge exist, course first then
// user, the same order the original checked them, so clients see the same
// error when both are missing.
func (s *EnrollmentService) checkEndpoints(ctx context.Context, userID, courseID int) error {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFoundError("course not found", err)
		}
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFoundError("user not found", err)
		}
		return err
	}
	return nil
}

// Enroll adds the user to the course. Enrolling when already enrolled
// succeeds without creating a second edge.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID int) error {
	if err := s.checkEndpoints(ctx, userID, courseID); err != nil {
		return err
	}
	return s.repo.AddEdge(ctx, userID, courseID)
}

// Unenroll removes the user from the course. Unenrolling a user who was never
// enrolled succeeds; the edge set is simply unchanged.
func (s *EnrollmentService) Unenroll(ctx context.Context, userID, courseID int) error {
	if err := s.checkEndpoints(ctx, userID, courseID); err != nil {
		return err
	}
	return s.repo.RemoveEdge(ctx, userID, courseID)
}

// Courses lists the courses the user is enrolled in, enriched with category
// and mentor display fields like every other course read.
func (s *EnrollmentService) Courses(ctx context.Context, userID int) ([]courses.Course, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.courses.EnrolledByUser(ctx, userID)
}

// CourseIDs lists just the course ids in the user's enrollment set.
func (s *EnrollmentService) CourseIDs(ctx context.Context, userID int) ([]int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.CoursesByUser(ctx, userID)
}
