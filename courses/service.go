package courses

import (
	"context"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/pagination"
	"github.com/user/learnhub-go/users"
)

// UserDirectory is the slice of the user repository the course service needs:
// just enough to check that a mentor reference resolves before storing it.
type UserDirectory interface {
	GetByID(ctx context.Context, id int) (*users.User, error)
}

// CourseService holds the business logic for the course catalog.
type CourseService struct {
	repo  Repository
	users UserDirectory
}

// NewCourseService creates a new CourseService.
func NewCourseService(repo Repository, userDirectory UserDirectory) *CourseService {
	return &CourseService{repo: repo, users: userDirectory}
}

// resolveMentor verifies that a mentor id points at an existing user. Writes
// are validated this way up front; reads tolerate dangling references and
// simply enrich them to null.
func (s *CourseService) resolveMentor(ctx context.Context, mentorID *int) error {
	if mentorID == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, *mentorID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFoundError("mentor not found", err)
		}
		return err
	}
	return nil
}

func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	if err := s.resolveMentor(ctx, req.MentorID); err != nil {
		return nil, err
	}
	course := &Course{
		Title:       req.Title,
		Description: req.Description,
		Slug:        req.Slug,
		CategoryID:  req.CategoryID,
		Lessons:     req.Lessons,
		Image:       req.Image,
		Price:       req.Price,
		MentorID:    req.MentorID,
	}
	return s.repo.Create(ctx, course)
}

func (s *CourseService) Get(ctx context.Context, id int) (*Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CourseService) Update(ctx context.Context, id int, req UpdateCourseRequest) (*Course, error) {
	if err := s.resolveMentor(ctx, req.MentorID); err != nil {
		return nil, err
	}
	fields := UpdateFields{
		Title:       req.Title,
		Description: req.Description,
		Slug:        req.Slug,
		CategoryID:  req.CategoryID,
		Lessons:     req.Lessons,
		Image:       req.Image,
		Price:       req.Price,
		MentorID:    req.MentorID,
	}
	return s.repo.Update(ctx, id, fields)
}

func (s *CourseService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Search returns one page of courses whose title contains the given substring.
// An empty query lists everything; zero matches is an empty page, not an
// error, unlike the category and mentor views below.
func (s *CourseService) Search(ctx context.Context, title string, params pagination.Params) (*pagination.Page[Course], error) {
	params = params.Normalize()
	items, total, err := s.repo.SearchByTitle(ctx, title, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, params, total), nil
}

// ByCategory lists the courses in a category. The original API answered 404
// when the listing came back empty, and clients depend on that, so an empty
// result is reported as not found here too.
func (s *CourseService) ByCategory(ctx context.Context, categoryID int, params pagination.Params) (*pagination.Page[Course], error) {
	params = params.Normalize()
	items, total, err := s.repo.ByCategory(ctx, categoryID, params)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, apperror.NewNotFoundError("no courses found for this category", nil)
	}
	return pagination.NewPage(items, params, total), nil
}

// ByMentor lists the courses taught by a mentor, with the same
// empty-means-404 contract as ByCategory.
func (s *CourseService) ByMentor(ctx context.Context, mentorID int, params pagination.Params) (*pagination.Page[Course], error) {
	params = params.Normalize()
	items, total, err := s.repo.ByMentor(ctx, mentorID, params)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, apperror.NewNotFoundError("no courses found for this mentor", nil)
	}
	return pagination.NewPage(items, params, total), nil
}
