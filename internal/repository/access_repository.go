package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessRepository handles access-grant rows created by subscription approval.
type AccessRepository struct {
	pool *pgxpool.Pool
}

// NewAccessRepository creates a new AccessRepository.
func NewAccessRepository(pool *pgxpool.Pool) *AccessRepository {
	return &AccessRepository{pool: pool}
}

// HasCourseAccess reports whether a grant row links the user to the course.
func (r *AccessRepository) HasCourseAccess(ctx context.Context, userID int64, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_access WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists)
	return exists, err
}

// HasSubjectAccess reports whether the user may open the subject: a direct
// subject grant, a grant on the parent course, or the content being free.
func (r *AccessRepository) HasSubjectAccess(ctx context.Context, userID int64, subjectID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM subjects s
		    LEFT JOIN courses c ON s.course_id = c.id
		    WHERE s.id = $2 AND (
		        s.is_free OR c.is_free
		        OR EXISTS(SELECT 1 FROM subject_access sa WHERE sa.user_id = $1 AND sa.subject_id = s.id)
		        OR EXISTS(SELECT 1 FROM course_access ca WHERE ca.user_id = $1 AND ca.course_id = s.course_id)
		    )
		 )`, userID, subjectID).Scan(&ok)
	return ok, err
}

// GrantCourse inserts a course grant, tolerating duplicates.
func (r *AccessRepository) GrantCourse(ctx context.Context, userID int64, courseID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO course_access (user_id, course_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, course_id) DO NOTHING`, userID, courseID)
	return err
}

// ListUserCourses returns the course IDs the user holds grants for.
func (r *AccessRepository) ListUserCourses(ctx context.Context, userID int64) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT course_id FROM course_access WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
