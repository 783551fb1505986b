package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, subject_id, title, duration_minutes, require_student_name,
	randomize_questions, randomize_options, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.SubjectID, &e.Title, &e.DurationMinutes, &e.RequireStudentName,
		&e.RandomizeQuestions, &e.RandomizeOptions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// ListBySubject retrieves all exams under a subject.
func (r *ExamRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE subject_id = $1 ORDER BY created_at ASC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (subject_id, title, duration_minutes, require_student_name,
		                    randomize_questions, randomize_options)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		e.SubjectID, e.Title, e.DurationMinutes, e.RequireStudentName,
		e.RandomizeQuestions, e.RandomizeOptions,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update modifies an existing exam.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $2, duration_minutes = $3, require_student_name = $4,
		     randomize_questions = $5, randomize_options = $6, updated_at = NOW()
		 WHERE id = $1`,
		e.ID, e.Title, e.DurationMinutes, e.RequireStudentName,
		e.RandomizeQuestions, e.RandomizeOptions)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an exam with its questions and attempts.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
