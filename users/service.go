// This file contains the business logic for user management. It acts as the
// "Service" layer between the HTTP handlers and the repository, the role the
// controller functions played in the original Express backend, but with the
// authorization checks pulled out to the auth package and the storage access
// behind the Repository interface.
package users

import (
	"context"
	"strings"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/auth"
	"github.com/user/learnhub-go/pagination"
)

// UserService provides user management operations.
type UserService struct {
	repo  Repository
	creds *auth.CredentialManager
	// Dependencies are injected explicitly via the constructor, the common Go
	// pattern (no DI container).
}

// NewUserService creates a new UserService.
func NewUserService(repo Repository, creds *auth.CredentialManager) *UserService {
	return &UserService{repo: repo, creds: creds}
}

// Create registers a new user account.
//
// The email uniqueness probe runs BEFORE the password is hashed: hashing is
// the expensive step (bcrypt is deliberately slow), so doing it for a request
// that is about to fail on a duplicate email is wasted work. The observable
// outcome is unchanged: a duplicate email yields Conflict either way, because
// the unique index inside Create remains the authoritative check even when two
// registrations race past the probe simultaneously.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	email := strings.ToLower(req.Email)

	// Uniqueness probe. Only a clean NotFound lets us proceed.
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperror.NewConflictError("email already exists", nil)
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	role := auth.Role(req.Role)
	if req.Role == "" {
		role = auth.RoleLearner
	}
	if !role.Valid() {
		return nil, apperror.NewValidationError("invalid role", nil)
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	hashed, err := s.creds.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:       req.Username,
		Email:          email,
		Phone:          req.Phone,
		HashedPassword: hashed,
		Role:           role,
		Status:         status,
	}
	return s.repo.Create(ctx, user)
}

// Update applies an explicit, validated set of field changes to a user.
func (s *UserService) Update(ctx context.Context, id int, req UpdateUserRequest) (*User, error) {
	fields := UpdateFields{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Status:   req.Status,
	}
	if req.Role != nil {
		role := auth.Role(*req.Role)
		if !role.Valid() {
			return nil, apperror.NewValidationError("invalid role", nil)
		}
		fields.Role = &role
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a user permanently (hard delete; enrollment edges cascade).
func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// ChangeRole sets a user's role.
//
// Outstanding tokens are untouched: a token carries the role as a snapshot
// taken at issuance, so a demoted or promoted user keeps acting under the old
// role until their token expires and a fresh one is minted. That is documented
// platform behavior, not an oversight.
func (s *UserService) ChangeRole(ctx context.Context, id int, role auth.Role) (*User, error) {
	if !role.Valid() {
		return nil, apperror.NewValidationError("invalid role", nil)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// ChangePassword verifies the old password and replaces the credential
// wholesale; a credential is only ever swapped in full, never edited.
func (s *UserService) ChangePassword(ctx context.Context, id int, req ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.creds.VerifyPassword(req.OldPassword, user.HashedPassword)
	if err != nil {
		// CredentialFormatError: the stored hash is corrupt. Fatal for this
		// request; surfaced as-is, never retried.
		return err
	}
	if !ok {
		return apperror.NewBadRequestError("incorrect old password", nil)
	}

	hashed, err := s.creds.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, id, hashed)
}

// Mentors lists all users holding the mentor role.
func (s *UserService) Mentors(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, auth.RoleMentor)
}

// Profile returns a user with their enrolled course ids loaded.
func (s *UserService) Profile(ctx context.Context, id int) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of all users.
func (s *UserService) List(ctx context.Context, params pagination.Params) (*pagination.Page[User], error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, params, total), nil
}

// SearchByEmail returns one page of users whose email contains the pattern
// anywhere, case-insensitively.
func (s *UserService) SearchByEmail(ctx context.Context, email string, params pagination.Params) (*pagination.Page[User], error) {
	params = params.Normalize()
	items, total, err := s.repo.SearchByEmail(ctx, email, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, params, total), nil
}
