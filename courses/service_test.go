package courses

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/auth"
	"github.com/user/learnhub-go/pagination"
	"github.com/user/learnhub-go/users"
)

// memoryRepository is a map-backed Repository for tests, reproducing the
// read-time enrichment: category and mentor display fields are resolved
// against in-memory lookup tables, and a dangling reference enriches to nil.
type memoryRepository struct {
	mu         sync.Mutex
	nextID     int
	courses    map[int]*Course
	categories map[int]string
	usernames  map[int]string
	enrolled   map[int][]int // userID -> course ids
}

var _ Repository = (*memoryRepository)(nil)

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		nextID:     1,
		courses:    make(map[int]*Course),
		categories: make(map[int]string),
		usernames:  make(map[int]string),
		enrolled:   make(map[int][]int),
	}
}

// enrich resolves the weak references the way the LEFT JOINs do.
func (r *memoryRepository) enrich(c Course) Course {
	c.CategoryName, c.MentorUsername = nil, nil
	if c.CategoryID != nil {
		if name, ok := r.categories[*c.CategoryID]; ok {
			c.CategoryName = &name
		}
	}
	if c.MentorID != nil {
		if username, ok := r.usernames[*c.MentorID]; ok {
			c.MentorUsername = &username
		}
	}
	return c
}

func (r *memoryRepository) Create(_ context.Context, course *Course) (*Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *course
	stored.ID = r.nextID
	r.nextID++
	r.courses[stored.ID] = &stored
	out := r.enrich(stored)
	return &out, nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int) (*Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, apperror.NewNotFoundError("course not found", nil)
	}
	out := r.enrich(*course)
	return &out, nil
}

func (r *memoryRepository) Update(_ context.Context, id int, fields UpdateFields) (*Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, apperror.NewNotFoundError("course not found", nil)
	}
	if fields.Title != nil {
		course.Title = *fields.Title
	}
	if fields.Description != nil {
		course.Description = *fields.Description
	}
	if fields.Slug != nil {
		course.Slug = *fields.Slug
	}
	if fields.CategoryID != nil {
		course.CategoryID = fields.CategoryID
	}
	if fields.Lessons != nil {
		course.Lessons = *fields.Lessons
	}
	if fields.Image != nil {
		course.Image = fields.Image
	}
	if fields.Price != nil {
		course.Price = *fields.Price
	}
	if fields.MentorID != nil {
		course.MentorID = fields.MentorID
	}
	out := r.enrich(*course)
	return &out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperror.NewNotFoundError("course not found", nil)
	}
	delete(r.courses, id)
	return nil
}

func (r *memoryRepository) paged(match func(*Course) bool, params pagination.Params) ([]Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []Course{}
	for _, course := range r.courses {
		if match(course) {
			matched = append(matched, r.enrich(*course))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memoryRepository) SearchByTitle(_ context.Context, pattern string, params pagination.Params) ([]Course, int64, error) {
	return r.paged(func(c *Course) bool {
		return strings.Contains(strings.ToLower(c.Title), strings.ToLower(pattern))
	}, params)
}

func (r *memoryRepository) ByCategory(_ context.Context, categoryID int, params pagination.Params) ([]Course, int64, error) {
	return r.paged(func(c *Course) bool {
		return c.CategoryID != nil && *c.CategoryID == categoryID
	}, params)
}

func (r *memoryRepository) ByMentor(_ context.Context, mentorID int, params pagination.Params) ([]Course, int64, error) {
	return r.paged(func(c *Course) bool {
		return c.MentorID != nil && *c.MentorID == mentorID
	}, params)
}

func (r *memoryRepository) EnrolledByUser(_ context.Context, userID int) ([]Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Course{}
	for _, id := range r.enrolled[userID] {
		if course, ok := r.courses[id]; ok {
			out = append(out, r.enrich(*course))
		}
	}
	return out, nil
}

// memoryUserDirectory answers the mentor existence checks.
type memoryUserDirectory struct {
	users map[int]*users.User
}

func (d *memoryUserDirectory) GetByID(_ context.Context, id int) (*users.User, error) {
	user, ok := d.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	return user, nil
}

func newTestService() (*CourseService, *memoryRepository, *memoryUserDirectory) {
	repo := newMemoryRepository()
	dir := &memoryUserDirectory{users: make(map[int]*users.User)}
	return NewCourseService(repo, dir), repo, dir
}

func intPtr(v int) *int { return &v }

func TestCreateResolvesMentor(t *testing.T) {
	svc, repo, dir := newTestService()
	dir.users[7] = &users.User{ID: 7, Username: "teach", Role: auth.RoleMentor}
	repo.usernames[7] = "teach"

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:       "Intro to Go",
		Description: "From zero",
		Slug:        "intro-to-go",
		MentorID:    intPtr(7),
	})
	require.NoError(t, err)
	require.NotNil(t, course.MentorUsername)
	assert.Equal(t, "teach", *course.MentorUsername)
}

func TestCreateUnresolvedMentor(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:       "Orphaned",
		Description: "x",
		Slug:        "orphaned",
		MentorID:    intPtr(999),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, repo.courses, "a rejected create writes nothing")
}

func TestUpdateUnresolvedMentor(t *testing.T) {
	svc, _, dir := newTestService()
	dir.users[7] = &users.User{ID: 7, Username: "teach"}

	created, err := svc.Create(context.Background(), CreateCourseRequest{
		Title: "T", Description: "d", Slug: "t", MentorID: intPtr(7),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateCourseRequest{MentorID: intPtr(999)})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

// A course whose stored mentor id no longer resolves still reads fine; only
// the enrichment is nulled.
func TestReadToleratesDanglingMentor(t *testing.T) {
	svc, repo, dir := newTestService()
	dir.users[7] = &users.User{ID: 7, Username: "teach"}
	repo.usernames[7] = "teach"

	created, err := svc.Create(context.Background(), CreateCourseRequest{
		Title: "Survivor", Description: "d", Slug: "survivor", MentorID: intPtr(7),
	})
	require.NoError(t, err)

	// The mentor account disappears out from under the course.
	delete(repo.usernames, 7)
	delete(dir.users, 7)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MentorID)
	assert.Equal(t, 7, *got.MentorID, "the weak reference itself is kept")
	assert.Nil(t, got.MentorUsername, "only the enrichment nulls out")
}

func TestSearchPaginationAndEmptyResult(t *testing.T) {
	svc, _, _ := newTestService()
	for _, title := range []string{
		"Intro to Go", "Intro to SQL", "Intro to HTTP", "Advanced Go", "Advanced SQL",
	} {
		_, err := svc.Create(context.Background(), CreateCourseRequest{
			Title:       title,
			Description: "d",
			Slug:        strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		})
		require.NoError(t, err)
	}

	page, err := svc.Search(context.Background(), "intro", pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Len(t, page.Items, 2)

	// Zero matches on search is an empty page, not an error.
	page, err = svc.Search(context.Background(), "no such course", pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.TotalCount)
	assert.NotNil(t, page.Items)
	assert.Len(t, page.Items, 0)
}

func TestByCategoryEmptyIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ByCategory(context.Background(), 42, pagination.Params{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestByMentorEmptyIsNotFound(t *testing.T) {
	svc, repo, dir := newTestService()
	dir.users[7] = &users.User{ID: 7, Username: "teach"}
	repo.usernames[7] = "teach"

	_, err := svc.ByMentor(context.Background(), 7, pagination.Params{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Create(context.Background(), CreateCourseRequest{
		Title: "Taught", Description: "d", Slug: "taught", MentorID: intPtr(7),
	})
	require.NoError(t, err)

	page, err := svc.ByMentor(context.Background(), 7, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestDeleteMissingCourse(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
