// This file is responsible for handling HTTP requests related to users.
// It acts as the "Controller" layer: decode, validate, gate, delegate to the
// service, serialize. The route shapes intentionally mirror the original
// Express router (`routers/user.js`), including its quirks like the POST
// /users/search listing endpoint that reads paging from the body.
package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/auth"
	"github.com/user/learnhub-go/pagination"
)

// UserHandlers provides HTTP handlers for user management.
type UserHandlers struct {
	service  *UserService
	validate *validator.Validate
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService, validate *validator.Validate) *UserHandlers {
	return &UserHandlers{service: service, validate: validate}
}

// RegisterRoutes registers the user routes on the router main has already
// scoped to /users. `authMW` is the authentication middleware; routes inside
// the Group require a valid token, the rest are public reads. Role checks
// happen per-handler, AFTER the middleware has authenticated: the ordering
// that keeps 401 and 403 distinct.
func (h *UserHandlers) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	// Public reads.
	r.Post("/search", h.HandleList())
	r.Get("/get-mentor", h.HandleMentors())
	r.Get("/profile/{id}", h.HandleProfileByID())

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Get("/profile", h.HandleProfile())
		r.Get("/searchByEmail", h.HandleSearchByEmail())
		r.Post("/", h.HandleCreate())
		r.Put("/{id}", h.HandleUpdate())
		r.Delete("/{id}", h.HandleDelete())
		r.Put("/change-role/{id}", h.HandleChangeRole())
		r.Put("/change_password/{id}", h.HandleChangePassword())
	})
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid user id", err)
	}
	return id, nil
}

// paginationFromQuery reads page/limit query parameters. Missing or garbage
// values are left at zero; Normalize applies the permissive defaults.
func paginationFromQuery(r *http.Request) pagination.Params {
	var p pagination.Params
	p.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	p.PerPage, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return p
}

// HandleList godoc
// @Summary List users (paginated)
// @Description Returns one page of all users. Paging parameters come in the request body, as in the original API.
// @Tags users
// @Accept json
// @Produce json
// @Param paging body pagination.Params false "Paging parameters"
// @Success 200 {object} pagination.Page[User]
// @Failure 500 {object} apperror.ErrorResponse
// @Router /users/search [post]
func (h *UserHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// An absent or unparsable body just means default paging; this listing
		// is deliberately permissive.
		var params pagination.Params
		_ = json.NewDecoder(r.Body).Decode(&params)
		defer r.Body.Close()

		page, err := h.service.List(r.Context(), params)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleMentors godoc
// @Summary List mentors
// @Description Returns all users holding the mentor role.
// @Tags users
// @Produce json
// @Success 200 {array} User
// @Failure 500 {object} apperror.ErrorResponse
// @Router /users/get-mentor [get]
func (h *UserHandlers) HandleMentors() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mentors, err := h.service.Mentors(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, mentors)
	}
}

// HandleProfileByID godoc
// @Summary Get a user profile by id
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} User
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/profile/{id} [get]
func (h *UserHandlers) HandleProfileByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		user, err := h.service.Profile(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleProfile godoc
// @Summary Get the authenticated caller's identity
// @Description Returns the principal derived from the verified token; the original returned the decoded token payload.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.Principal
// @Failure 401 {object} apperror.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandlers) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := auth.RequirePrincipal(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, principal)
	}
}

// HandleSearchByEmail godoc
// @Summary Search users by email substring
// @Description Case-insensitive, unanchored substring match on the email field.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email query string true "Email substring"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} pagination.Page[User]
// @Failure 401 {object} apperror.ErrorResponse
// @Router /users/searchByEmail [get]
func (h *UserHandlers) HandleSearchByEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		page, err := h.service.SearchByEmail(r.Context(), email, paginationFromQuery(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleCreate godoc
// @Summary Create a user
// @Description Admin-only. Email must be unique; the password is hashed before storage.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "New user"
// @Success 201 {object} User
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users [post]
func (h *UserHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := auth.RequirePrincipal(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := auth.RequireRole(principal, auth.RoleAdmin); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()
		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
			return
		}

		user, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleUpdate godoc
// @Summary Update a user
// @Description Admin-only. Accepts an explicit set of updatable fields; unknown fields are ignored by decoding, absent fields stay untouched.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Param user body UpdateUserRequest true "Fields to update"
// @Success 200 {object} User
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := auth.RequirePrincipal(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := auth.RequireRole(principal, auth.RoleAdmin); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()
		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
			return
		}

		user, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleDelete godoc
// @Summary Delete a user
// @Description Admin-only hard delete; enrollment edges are removed with the user.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {string} string "Delete success"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := auth.RequirePrincipal(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := auth.RequireRole(principal, auth.RoleAdmin); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Delete success"})
	}
}

// HandleChangeRole godoc
// @Summary Change a user's role
// @Description Admin-only. Outstanding tokens keep the role they were issued with until they expire.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Param role body ChangeRoleRequest true "New role"
// @Success 200 {object} User
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/change-role/{id} [put]
func (h *UserHandlers) HandleChangeRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := auth.RequirePrincipal(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := auth.RequireRole(principal, auth.RoleAdmin); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var req ChangeRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()
		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
			return
		}

		user, err := h.service.ChangeRole(r.Context(), id, auth.Role(req.Role))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleChangePassword godoc
// @Summary Change a user's password
// @Description Verifies the old password, then replaces the stored credential wholesale.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Param passwords body ChangePasswordRequest true "Old and new password"
// @Success 200 {string} string "Password changed successfully"
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/change_password/{id} [put]
func (h *UserHandlers) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Any authenticated principal may use this route, matching the
		// original's checkLogin-only gating.
		if _, err := auth.RequirePrincipal(r.Context()); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()
		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
			return
		}

		if err := h.service.ChangePassword(r.Context(), id, req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
	}
}
