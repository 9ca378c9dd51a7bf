package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/auth"
	"github.com/user/learnhub-go/pagination"
)

// memoryRepository is a mutex-guarded, map-backed Repository for tests. It
// mirrors the error contract of the pgx implementation: NotFound for missing
// ids, Conflict for duplicate emails.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*User
}

var _ Repository = (*memoryRepository)(nil)

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, users: make(map[int]*User)}
}

func (r *memoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
	}
	stored := *user
	stored.ID = r.nextID
	r.nextID++
	r.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	out := *user
	return &out, nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (r *memoryRepository) Update(_ context.Context, id int, fields UpdateFields) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	if fields.Username != nil {
		user.Username = *fields.Username
	}
	if fields.Email != nil {
		user.Email = *fields.Email
	}
	if fields.Phone != nil {
		user.Phone = *fields.Phone
	}
	if fields.Role != nil {
		user.Role = *fields.Role
	}
	if fields.Status != nil {
		user.Status = *fields.Status
	}
	out := *user
	return &out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperror.NewNotFoundError("user not found", nil)
	}
	delete(r.users, id)
	return nil
}

func (r *memoryRepository) UpdateRole(_ context.Context, id int, role auth.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return apperror.NewNotFoundError("user not found", nil)
	}
	user.Role = role
	return nil
}

func (r *memoryRepository) UpdatePasswordHash(_ context.Context, id int, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return apperror.NewNotFoundError("user not found", nil)
	}
	user.HashedPassword = hash
	return nil
}

func (r *memoryRepository) ListByRole(_ context.Context, role auth.Role) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []User{}
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) List(ctx context.Context, params pagination.Params) ([]User, int64, error) {
	return r.SearchByEmail(ctx, "", params)
}

func (r *memoryRepository) SearchByEmail(_ context.Context, pattern string, params pagination.Params) ([]User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []User{}
	for _, user := range r.users {
		if strings.Contains(strings.ToLower(user.Email), strings.ToLower(pattern)) {
			matched = append(matched, *user)
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

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func newTestService() (*UserService, *memoryRepository) {
	repo := newMemoryRepository()
	creds := auth.NewCredentialManager(bcrypt.MinCost)
	return NewUserService(repo, creds), repo
}

func TestCreateDefaultsAndHashing(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "newlearner",
		Email:    "Learner@Example.COM",
		Password: "strongpassword123",
	})
	require.NoError(t, err)

	assert.Equal(t, "learner@example.com", user.Email, "email is stored lowercased")
	assert.Equal(t, auth.RoleLearner, user.Role, "role defaults to learner")
	assert.Equal(t, "active", user.Status)
	assert.NotEqual(t, "strongpassword123", user.HashedPassword, "password never stored in the clear")

	creds := auth.NewCredentialManager(bcrypt.MinCost)
	ok, err := creds.VerifyPassword("strongpassword123", user.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "first",
		Email:    "taken@example.com",
		Password: "strongpassword123",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserRequest{
		Username: "second",
		Email:    "TAKEN@example.com", // same address, different case
		Password: "anotherpassword123",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, 1, repo.count(), "the losing registration must not write anything")
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "x",
		Email:    "x@example.com",
		Password: "strongpassword123",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "original",
		Email:    "original@example.com",
		Password: "strongpassword123",
		Phone:    "+84901234567",
	})
	require.NoError(t, err)

	newName := "renamed"
	updated, err := svc.Update(context.Background(), created.ID, UpdateUserRequest{Username: &newName})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "original@example.com", updated.Email, "absent fields stay untouched")
	assert.Equal(t, "+84901234567", updated.Phone)
}

func TestUpdateMissingUser(t *testing.T) {
	svc, _ := newTestService()
	name := "whoever"
	_, err := svc.Update(context.Background(), 999, UpdateUserRequest{Username: &name})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestChangeRole(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "promotee",
		Email:    "promotee@example.com",
		Password: "strongpassword123",
	})
	require.NoError(t, err)

	updated, err := svc.ChangeRole(context.Background(), created.ID, auth.RoleMentor)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleMentor, updated.Role)

	_, err = svc.ChangeRole(context.Background(), created.ID, auth.Role("superuser"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "rotator",
		Email:    "rotator@example.com",
		Password: "oldpassword123",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.ID, ChangePasswordRequest{
		OldPassword: "oldpassword123",
		NewPassword: "newpassword456",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	creds := auth.NewCredentialManager(bcrypt.MinCost)
	ok, err := creds.VerifyPassword("newpassword456", stored.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok, "the credential is replaced wholesale")
	ok, err = creds.VerifyPassword("oldpassword123", stored.HashedPassword)
	require.NoError(t, err)
	assert.False(t, ok, "the old password stops working")
}

func TestChangePasswordWrongOld(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "rotator",
		Email:    "rotator@example.com",
		Password: "oldpassword123",
	})
	require.NoError(t, err)
	before, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.ID, ChangePasswordRequest{
		OldPassword: "not the old password",
		NewPassword: "newpassword456",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))

	after, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, before.HashedPassword, after.HashedPassword, "a rejected change writes nothing")
}

func TestChangePasswordCorruptStoredHash(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "corrupted",
		Email:    "corrupted@example.com",
		Password: "oldpassword123",
	})
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePasswordHash(context.Background(), created.ID, "not-a-bcrypt-hash"))

	err = svc.ChangePassword(context.Background(), created.ID, ChangePasswordRequest{
		OldPassword: "oldpassword123",
		NewPassword: "newpassword456",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCredentialFormatError(err))
}

func TestMentorsListsOnlyMentors(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "teach", Email: "teach@example.com", Password: "strongpassword123", Role: "mentor",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateUserRequest{
		Username: "study", Email: "study@example.com", Password: "strongpassword123",
	})
	require.NoError(t, err)

	mentors, err := svc.Mentors(context.Background())
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	assert.Equal(t, "teach", mentors[0].Username)
}

func TestSearchByEmailPagination(t *testing.T) {
	svc, _ := newTestService()
	for _, email := range []string{
		"alice@corp.io", "bob@corp.io", "carol@corp.io",
		"dave@other.net", "erin@other.net",
	} {
		_, err := svc.Create(context.Background(), CreateUserRequest{
			Username: strings.Split(email, "@")[0] + "xx",
			Email:    email,
			Password: "strongpassword123",
		})
		require.NoError(t, err)
	}

	// 3 matches for "CORP" at page size 2: two pages, the second holds one.
	page, err := svc.SearchByEmail(context.Background(), "CORP", pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Len(t, page.Items, 2)

	page, err = svc.SearchByEmail(context.Background(), "CORP", pagination.Params{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	// Out-of-range paging parameters clamp instead of failing.
	page, err = svc.SearchByEmail(context.Background(), "corp", pagination.Params{Page: 0, PerPage: -5})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, pagination.DefaultPerPage, page.PerPage)
}
