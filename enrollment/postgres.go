package enrollment

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/learnhub-go/apperror"
)

// PostgresRepository is the pgx-backed Repository implementation. The
// enrollments table's primary key is (user_id, course_id), so set semantics
// are enforced by the database itself.
type PostgresRepository struct {
	db *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddEdge inserts the edge. ON CONFLICT DO NOTHING turns the original's
// read-modify-write array push into a single atomic statement: two racing
// enrollments both succeed and exactly one row exists afterwards.
func (r *PostgresRepository) AddEdge(ctx context.Context, userID, courseID int) error {
	query := `
		INSERT INTO enrollments (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, query, userID, courseID); err != nil {
		return apperror.NewDatabaseError("failed to record enrollment", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveEdge(ctx context.Context, userID, courseID int) error {
	query := "DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2"
	if _, err := r.db.Exec(ctx, query, userID, courseID); err != nil {
		return apperror.NewDatabaseError("failed to remove enrollment", err)
	}
	return nil
}

func (r *PostgresRepository) CoursesByUser(ctx context.Context, userID int) ([]int, error) {
	query := "SELECT course_id FROM enrollments WHERE user_id = $1 ORDER BY course_id"
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list enrollments", err)
	}
	defer rows.Close()

	courseIDs := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan enrollment row", err)
		}
		courseIDs = append(courseIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read enrollment rows", err)
	}
	return courseIDs, nil
}
