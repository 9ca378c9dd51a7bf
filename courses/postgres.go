package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/pagination"
)

// PostgresRepository is the pgx-backed Repository implementation.
type PostgresRepository struct {
	db *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgUniqueViolation = "23505"

// courseColumns selects the course row together with its read-time
// enrichments. The LEFT JOINs mean a dangling category or mentor reference
// yields NULL display fields instead of dropping the row, the same shape a
// Mongoose populate gives you when the referenced document is gone.
const courseColumns = `c.id, c.title, c.description, c.slug, c.category_id, c.lessons,
	       c.image, c.price, c.mentor_id, cat.name, u.username, c.created_at`

const courseJoins = ` FROM courses c
	LEFT JOIN categories cat ON cat.id = c.category_id
	LEFT JOIN users u ON u.id = c.mentor_id`

func scanCourse(row pgx.Row) (*Course, error) {
	var course Course
	err := row.Scan(
		&course.ID, &course.Title, &course.Description, &course.Slug,
		&course.CategoryID, &course.Lessons, &course.Image, &course.Price,
		&course.MentorID, &course.CategoryName, &course.MentorUsername,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func collectCourses(rows pgx.Rows) ([]Course, error) {
	defer rows.Close()
	courses := []Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan course row", err)
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read course rows", err)
	}
	return courses, nil
}

// Create inserts the course and re-reads it through the enriched view so the
// caller gets the joined display fields in one round-trip from its side.
func (r *PostgresRepository) Create(ctx context.Context, course *Course) (*Course, error) {
	query := `
		INSERT INTO courses (title, description, slug, category_id, lessons, image, price, mentor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		course.Title, course.Description, course.Slug, course.CategoryID,
		course.Lessons, course.Image, course.Price, course.MentorID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("a course with this slug already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to create course", err)
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Course, error) {
	query := "SELECT " + courseColumns + courseJoins + " WHERE c.id = $1"
	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("course not found", err)
		}
		return nil, apperror.NewDatabaseError("failed to get course", err)
	}
	return course, nil
}

// Update applies the non-nil fields. The SET clause is assembled from a closed
// field list, so a request can never write a column this method does not name.
func (r *PostgresRepository) Update(ctx context.Context, id int, fields UpdateFields) (*Course, error) {
	setClauses := []string{}
	args := []any{}
	appendSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		appendSet("title", *fields.Title)
	}
	if fields.Description != nil {
		appendSet("description", *fields.Description)
	}
	if fields.Slug != nil {
		appendSet("slug", *fields.Slug)
	}
	if fields.CategoryID != nil {
		appendSet("category_id", *fields.CategoryID)
	}
	if fields.Lessons != nil {
		appendSet("lessons", *fields.Lessons)
	}
	if fields.Image != nil {
		appendSet("image", *fields.Image)
	}
	if fields.Price != nil {
		appendSet("price", *fields.Price)
	}
	if fields.MentorID != nil {
		appendSet("mentor_id", *fields.MentorID)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("a course with this slug already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to update course", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewNotFoundError("course not found", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete course", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("course not found", nil)
	}
	return nil
}

// pagedQuery runs a COUNT plus a LIMIT/OFFSET select sharing one WHERE clause.
func (r *PostgresRepository) pagedQuery(ctx context.Context, where string, params pagination.Params, whereArgs ...any) ([]Course, int64, error) {
	var total int64
	countQuery := "SELECT COUNT(*)" + courseJoins + " " + where
	if err := r.db.QueryRow(ctx, countQuery, whereArgs...).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count courses", err)
	}

	args := append(whereArgs, params.PerPage, params.Offset())
	query := fmt.Sprintf("SELECT "+courseColumns+courseJoins+" %s ORDER BY c.id LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list courses", err)
	}
	courses, err := collectCourses(rows)
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *PostgresRepository) SearchByTitle(ctx context.Context, pattern string, params pagination.Params) ([]Course, int64, error) {
	return r.pagedQuery(ctx, "WHERE c.title ILIKE $1", params, "%"+pattern+"%")
}

func (r *PostgresRepository) ByCategory(ctx context.Context, categoryID int, params pagination.Params) ([]Course, int64, error) {
	return r.pagedQuery(ctx, "WHERE c.category_id = $1", params, categoryID)
}

func (r *PostgresRepository) ByMentor(ctx context.Context, mentorID int, params pagination.Params) ([]Course, int64, error) {
	return r.pagedQuery(ctx, "WHERE c.mentor_id = $1", params, mentorID)
}

func (r *PostgresRepository) EnrolledByUser(ctx context.Context, userID int) ([]Course, error) {
	query := "SELECT " + courseColumns + courseJoins + `
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.user_id = $1
		ORDER BY c.id`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list enrolled courses", err)
	}
	return collectCourses(rows)
}
