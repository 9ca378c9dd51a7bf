// HTTP layer for the course catalog. Mutations require the admin or mentor
// role; the listing and search endpoints are public, matching the original
// Express router's gating.
package courses

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

// CourseHandlers provides HTTP handlers for courses.
type CourseHandlers struct {
	service  *CourseService
	validate *validator.Validate
}

// NewCourseHandlers creates new CourseHandlers.
func NewCourseHandlers(service *CourseService, validate *validator.Validate) *CourseHandlers {
	return &CourseHandlers{service: service, validate: validate}
}

// RegisterRoutes registers the course routes on the router main has already
// scoped to /courses.
func (h *CourseHandlers) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Post("/search", h.HandleSearch())
	r.Get("/{id}", h.HandleGet())
	r.Get("/category/{id}", h.HandleByCategory())
	r.Get("/mentor/{id}", h.HandleByMentor())

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", h.HandleCreate())
		r.Put("/{id}", h.HandleUpdate())
		r.Delete("/{id}", h.HandleDelete())
	})
}

func idParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid "+name+" id", err)
	}
	return id, nil
}

func paginationFromQuery(r *http.Request) pagination.Params {
	var p pagination.Params
	p.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	p.PerPage, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return p
}

// requireEditor gates course mutations: admins and mentors may write the
// catalog, learners may not.
func requireEditor(r *http.Request) error {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	return auth.RequireRole(principal, auth.RoleAdmin, auth.RoleMentor)
}

// HandleSearch godoc
// @Summary Search courses by title (paginated)
// @Description Case-insensitive, unanchored substring match on the title; an empty title lists everything.
// @Tags courses
// @Accept json
// @Produce json
// @Param search body SearchCoursesRequest false "Search and paging parameters"
// @Success 200 {object} pagination.Page[Course]
// @Failure 500 {object} apperror.ErrorResponse
// @Router /courses/search [post]
func (h *CourseHandlers) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchCoursesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		defer r.Body.Close()

		page, err := h.service.Search(r.Context(), req.Title, pagination.Params{Page: req.Page, PerPage: req.Limit})
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleGet godoc
// @Summary Get a course by id
// @Tags courses
// @Produce json
// @Param id path int true "Course id"
// @Success 200 {object} Course
// @Failure 404 {object} apperror.ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "course")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		course, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, course)
	}
}

// HandleByCategory godoc
// @Summary List courses in a category
// @Description Answers 404 when the category has no courses, as the original API did.
// @Tags courses
// @Produce json
// @Param id path int true "Category id"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} pagination.Page[Course]
// @Failure 404 {object} apperror.ErrorResponse
// @Router /courses/category/{id} [get]
func (h *CourseHandlers) HandleByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "category")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		page, err := h.service.ByCategory(r.Context(), id, paginationFromQuery(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleByMentor godoc
// @Summary List courses taught by a mentor
// @Tags courses
// @Produce json
// @Param id path int true "Mentor id"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} pagination.Page[Course]
// @Failure 404 {object} apperror.ErrorResponse
// @Router /courses/mentor/{id} [get]
func (h *CourseHandlers) HandleByMentor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "mentor")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		page, err := h.service.ByMentor(r.Context(), id, paginationFromQuery(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleCreate godoc
// @Summary Create a course
// @Description Admin or mentor only. A mentor reference, if given, must resolve to an existing user.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body CreateCourseRequest true "New course"
// @Success 201 {object} Course
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /courses [post]
func (h *CourseHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireEditor(r); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req CreateCourseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()
		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
			return
		}

		course, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, course)
	}
}

// HandleUpdate godoc
// @Summary Update a course
// @Description Admin or mentor only. Fields absent from the body stay untouched.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course id"
// @Param course body UpdateCourseRequest true "Fields to update"
// @Success 200 {object} Course
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireEditor(r); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := idParam(r, "course")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var req UpdateCourseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()
		if err := h.validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError(err.Error(), err))
			return
		}

		course, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, course)
	}
}

// HandleDelete godoc
// @Summary Delete a course
// @Description Admin or mentor only. Enrollment edges for the course go with it.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course id"
// @Success 200 {string} string "Delete success"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireEditor(r); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := idParam(r, "course")
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
