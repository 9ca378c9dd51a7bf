package enrollment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/auth"
)

// EnrollmentHandlers provides HTTP handlers for enrolling in and leaving
// courses.
type EnrollmentHandlers struct {
	service *EnrollmentService
}

// NewEnrollmentHandlers creates new EnrollmentHandlers.
func NewEnrollmentHandlers(service *EnrollmentService) *EnrollmentHandlers {
	return &EnrollmentHandlers{service: service}
}

// RegisterCourseRoutes registers the enroll/unenroll routes on the /courses
// subrouter. They require authentication but no particular role: learners
// enroll themselves.
func (h *EnrollmentHandlers) RegisterCourseRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/{id}/enroll", h.HandleEnroll())
		r.Post("/{id}/unenroll", h.HandleUnenroll())
	})
}

// RegisterUserRoutes registers the enrollment listing route on the /users
// subrouter.
func (h *EnrollmentHandlers) RegisterUserRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Get("/{id}/courses", h.HandleUserCourses())
	})
}

// enrollRequest optionally names the user to act on. When absent, the
// authenticated caller acts on themself.
type enrollRequest struct {
	UserID int `json:"user_id"`
}

func courseIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid course id", err)
	}
	return id, nil
}

// subject resolves which user the request acts on: the body's user_id if
// given, otherwise the principal.
func subject(r *http.Request) (int, error) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		return 0, err
	}
	var req enrollRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()
	if req.UserID > 0 {
		return req.UserID, nil
	}
	return principal.UserID, nil
}

// HandleEnroll godoc
// @Summary Enroll a user in a course
// @Description Idempotent: enrolling an already-enrolled user succeeds and leaves a single membership.
// @Tags enrollment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course id"
// @Param body body enrollRequest false "Optional user to enroll (defaults to the caller)"
// @Success 200 {string} string "Enroll course success"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandlers) HandleEnroll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := courseIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		userID, err := subject(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Enroll(r.Context(), userID, courseID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Enroll course success"})
	}
}

// HandleUnenroll godoc
// @Summary Remove a user from a course
// @Description Idempotent: unenrolling a user who was never enrolled still succeeds.
// @Tags enrollment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course id"
// @Param body body enrollRequest false "Optional user to unenroll (defaults to the caller)"
// @Success 200 {string} string "Unenroll course success"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /courses/{id}/unenroll [post]
func (h *EnrollmentHandlers) HandleUnenroll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := courseIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		userID, err := subject(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Unenroll(r.Context(), userID, courseID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"message": "Unenroll course success"})
	}
}

// HandleUserCourses godoc
// @Summary List the courses a user is enrolled in
// @Description Returns full course records with their category and mentor display fields.
// @Tags enrollment
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {array} courses.Course
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/{id}/courses [get]
func (h *EnrollmentHandlers) HandleUserCourses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.RequirePrincipal(r.Context()); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		userID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || userID <= 0 {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid user id", err))
			return
		}
		enrolled, err := h.service.Courses(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, enrolled)
	}
}
