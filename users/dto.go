// This file defines Data Transfer Objects (DTOs) for the users module: the
// request payloads, with `validate` tags consumed by go-playground/validator.
// Validation runs before any storage access, so malformed input never reaches
// the repository, unlike the original, which passed `req.body` fields through
// unchecked.
package users

// CreateUserRequest is the payload for creating a user (admin operation).
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64" example:"newlearner"`
	Email    string `json:"email" validate:"required,email" example:"learner@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"strongpassword123"`
	Phone    string `json:"phone" validate:"omitempty,max=32" example:"+84901234567"`
	// Defaults to "learner" when omitted.
	Role   string `json:"role" validate:"omitempty,oneof=learner mentor admin" example:"learner"`
	Status string `json:"status" validate:"omitempty,max=32" example:"active"`
}

// UpdateUserRequest is the explicit set of updatable user fields.
// Pointers distinguish "not provided" (nil) from "set to zero value" and allow
// partial updates. This replaces the original's open-ended
// `findByIdAndUpdate(id, req.body)` merge with a closed, validated record.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=learner mentor admin"`
	Status   *string `json:"status,omitempty" validate:"omitempty,max=32"`
}

// ChangeRoleRequest is the payload for the role-change operation.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=learner mentor admin" example:"mentor"`
}

// ChangePasswordRequest carries the old and new passwords for a password change.
// The old password is re-verified before anything is written.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}
