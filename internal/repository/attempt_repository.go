package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// AttemptRepository handles attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, exam_id, user_id, status, student_name, answers, score, percentage, started_at, completed_at`

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answersRaw []byte
	err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.StudentName,
		&answersRaw, &a.Score, &a.Percentage, &a.StartedAt, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	if len(answersRaw) > 0 {
		if err := json.Unmarshal(answersRaw, &a.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return a, nil
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// GetByExamAndUser retrieves the attempt for an exam-user pair.
func (r *AttemptRepository) GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int64) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE exam_id = $1 AND user_id = $2`, examID, userID))
}

// Create inserts a new in-progress attempt. The (exam_id, user_id) unique
// constraint makes a concurrent double-start collapse into one row; on
// conflict nothing is inserted and pgx.ErrNoRows is returned.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (exam_id, user_id, status, student_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, user_id) DO NOTHING
		 RETURNING id, started_at`,
		a.ExamID, a.UserID, model.AttemptStatusInProgress, a.StudentName,
	).Scan(&a.ID, &a.StartedAt)
}

// Complete finalizes an attempt. The status guard makes the operation
// idempotent: only the first submission for an attempt writes; later
// duplicates (the exit beacon racing the explicit submit) affect zero rows
// and the caller returns the stored result instead.
func (r *AttemptRepository) Complete(ctx context.Context, id uuid.UUID, answers map[string]uuid.UUID, score, percentage int) (bool, error) {
	answersRaw, err := json.Marshal(answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $2, answers = $3, score = $4, percentage = $5, completed_at = NOW()
		 WHERE id = $1 AND status = $6`,
		id, model.AttemptStatusCompleted, answersRaw, score, percentage,
		model.AttemptStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByExam retrieves a page of attempts for an exam, newest first, for the
// teacher results view.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE exam_id = $1 ORDER BY started_at DESC
		 LIMIT $2 OFFSET $3`, examID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

// CountByExam counts attempts on an exam, for results pagination.
func (r *AttemptRepository) CountByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE exam_id = $1`, examID).Scan(&n)
	return n, err
}

// CountSince counts attempts started after the given time (dashboard stat).
func (r *AttemptRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE started_at >= $1`, since).Scan(&n)
	return n, err
}
