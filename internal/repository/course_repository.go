package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// CourseRepository handles course and subject data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// List retrieves all courses ordered by creation time.
func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, is_free, created_at, updated_at
		 FROM courses ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.IsFree, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetByID retrieves a single course.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, is_free, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.IsFree, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetDetail retrieves a course with its subjects and exam summaries embedded.
func (r *CourseRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.CourseDetail, error) {
	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, title, is_free, position
		 FROM subjects WHERE course_id = $1 ORDER BY position ASC, title ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	detail := &model.CourseDetail{Course: *course, Subjects: []model.SubjectDetail{}}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Title, &s.IsFree, &s.Position); err != nil {
			return nil, err
		}
		detail.Subjects = append(detail.Subjects, model.SubjectDetail{Subject: s, Exams: []model.ExamSummary{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	examRows, err := r.pool.Query(ctx,
		`SELECT e.id, e.subject_id, e.title, e.duration_minutes, e.require_student_name,
		        (SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id)
		 FROM exams e
		 JOIN subjects s ON e.subject_id = s.id
		 WHERE s.course_id = $1
		 ORDER BY e.created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer examRows.Close()

	bySubject := make(map[uuid.UUID]int, len(detail.Subjects))
	for i := range detail.Subjects {
		bySubject[detail.Subjects[i].ID] = i
	}
	for examRows.Next() {
		var e model.ExamSummary
		var subjectID uuid.UUID
		if err := examRows.Scan(&e.ID, &subjectID, &e.Title, &e.DurationMinutes, &e.RequireStudentName, &e.QuestionCount); err != nil {
			return nil, err
		}
		if i, ok := bySubject[subjectID]; ok {
			detail.Subjects[i].Exams = append(detail.Subjects[i].Exams, e)
		}
	}
	return detail, examRows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, is_free)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.IsFree,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET title = $2, description = $3, is_free = $4, updated_at = NOW()
		 WHERE id = $1`,
		c.ID, c.Title, c.Description, c.IsFree)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a course and, via cascade, its subjects and exams.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetSubject retrieves a single subject.
func (r *CourseRepository) GetSubject(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, is_free, position FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.CourseID, &s.Title, &s.IsFree, &s.Position)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSubject inserts a subject under a course.
func (r *CourseRepository) CreateSubject(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (course_id, title, is_free, position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		s.CourseID, s.Title, s.IsFree, s.Position,
	).Scan(&s.ID)
}

// UpdateSubject modifies an existing subject.
func (r *CourseRepository) UpdateSubject(ctx context.Context, s *model.Subject) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subjects SET title = $2, is_free = $3, position = $4 WHERE id = $1`,
		s.ID, s.Title, s.IsFree, s.Position)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteSubject removes a subject and its exams.
func (r *CourseRepository) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
