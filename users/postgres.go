// This file implements the user Repository against PostgreSQL using pgx.
// SQL stays localized here; the service layer above only ever sees apperror
// classifications.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	// PostgreSQL driver and utilities from the `jackc/pgx` suite.
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/auth"
	"github.com/user/learnhub-go/pagination"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgresRepository is the pgx-backed implementation of Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// Compile-time check that PostgresRepository satisfies the Repository contract.
var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a PostgresRepository on the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// userColumns is the canonical select list shared by every user query.
const userColumns = "id, username, email, phone, password, role, status, created_at"

// scanUser scans one user row in userColumns order.
func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.HashedPassword,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, email, phone, password, role, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		user.Username, user.Email, user.Phone, user.HashedPassword, user.Role, user.Status,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// The unique index is the authoritative uniqueness check: even when
			// the service's pre-insert probe passed, a concurrent insert can
			// still land here.
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email already exists", nil)
			}
			return nil, apperror.NewConflictError("user already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	// Load the user's enrolled course ids. A second, simple query instead of an
	// array aggregate keeps the scan straightforward.
	rows, err := r.db.Query(ctx, `SELECT course_id FROM enrollments WHERE user_id = $1 ORDER BY course_id`, id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load enrollments", err)
	}
	defer rows.Close()
	for rows.Next() {
		var courseID int
		if err := rows.Scan(&courseID); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan enrollment", err)
		}
		user.EnrolledCourses = append(user.EnrolledCourses, courseID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to load enrollments", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, fields UpdateFields) (*User, error) {
	// Build the UPDATE statement from the explicit, closed field set. Only the
	// columns named in UpdateFields can ever be touched here, by construction.
	var setClauses []string
	var args []interface{}
	argID := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if fields.Username != nil {
		appendSet("username", *fields.Username)
	}
	if fields.Email != nil {
		appendSet("email", strings.ToLower(*fields.Email))
	}
	if fields.Phone != nil {
		appendSet("phone", *fields.Phone)
	}
	if fields.Role != nil {
		appendSet("role", *fields.Role)
	}
	if fields.Status != nil {
		appendSet("status", *fields.Status)
	}

	if len(setClauses) == 0 {
		// Nothing to change; behave like a read.
		return r.GetByID(ctx, id)
	}

	args = append(args, id) // For the WHERE clause
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	// Deleting a user also removes their enrollment edges; the foreign key is
	// declared ON DELETE CASCADE in the schema, so one statement suffices.
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("user not found", nil)
	}
	return nil
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id int, role auth.Role) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to update role", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("user not found", nil)
	}
	return nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id int, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("user not found", nil)
	}
	return nil
}

func (r *PostgresRepository) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 ORDER BY id`, userColumns)
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users by role", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *PostgresRepository) List(ctx context.Context, params pagination.Params) ([]User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count users", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY id LIMIT $1 OFFSET $2`, userColumns)
	rows, err := r.db.Query(ctx, query, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()
	items, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) SearchByEmail(ctx context.Context, pattern string, params pagination.Params) ([]User, int64, error) {
	// ILIKE with surrounding wildcards is the SQL equivalent of the original's
	// unanchored case-insensitive `.*pattern.*` regex. The pg_trgm index on
	// email keeps this from degrading into a full scan.
	like := "%" + pattern + "%"

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email ILIKE $1`, like).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count users by email", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE email ILIKE $1 ORDER BY id LIMIT $2 OFFSET $3`, userColumns)
	rows, err := r.db.Query(ctx, query, like, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to search users by email", err)
	}
	defer rows.Close()
	items, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// collectUsers drains a rows cursor into a slice.
func collectUsers(rows pgx.Rows) ([]User, error) {
	var items []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		items = append(items, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read users", err)
	}
	return items, nil
}
