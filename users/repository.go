// This file defines the repository contract the user service depends on.
// The service never touches SQL directly; it talks to this interface, which
// the pgx implementation (postgres.go) satisfies in production and small
// in-memory fakes satisfy in tests. Every method classifies its failures into
// apperror types (pgx.ErrNoRows becomes NotFound, unique violations become
// Conflict) so no raw storage error escapes upward.
package users

import (
	"context"

	"github.com/user/learnhub-go/auth"
	"github.com/user/learnhub-go/pagination"
)

// UpdateFields is the storage-level record of updatable user columns.
// nil fields are left untouched.
type UpdateFields struct {
	Username *string
	Email    *string
	Phone    *string
	Role     *auth.Role
	Status   *string
}

// Repository defines the persistence operations for users.
type Repository interface {
	// Create inserts a new user and returns it with ID and CreatedAt set.
	// Returns Conflict if the email is already taken (unique index).
	Create(ctx context.Context, user *User) (*User, error)

	// GetByID returns the user with enrolled course ids loaded.
	// Returns NotFound if the id does not resolve.
	GetByID(ctx context.Context, id int) (*User, error)

	// GetByEmail looks a user up by (lowercased) email.
	// Returns NotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update applies the non-nil fields and returns the updated user.
	// Returns NotFound if the id does not resolve, Conflict on duplicate email.
	Update(ctx context.Context, id int, fields UpdateFields) (*User, error)

	// Delete removes the user (hard delete, no retained history).
	// Returns NotFound if the id does not resolve.
	Delete(ctx context.Context, id int) error

	// UpdateRole sets the user's role. Returns NotFound if absent.
	UpdateRole(ctx context.Context, id int, role auth.Role) error

	// UpdatePasswordHash replaces the stored credential wholesale.
	// Returns NotFound if absent.
	UpdatePasswordHash(ctx context.Context, id int, hash string) error

	// ListByRole returns all users holding the given role.
	ListByRole(ctx context.Context, role auth.Role) ([]User, error)

	// List returns one page of users plus the total row count.
	List(ctx context.Context, params pagination.Params) ([]User, int64, error)

	// SearchByEmail returns one page of users whose email contains the pattern
	// (case-insensitive, unanchored), plus the total match count.
	SearchByEmail(ctx context.Context, pattern string, params pagination.Params) ([]User, int64, error)
}
