package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByExam retrieves an exam's questions in canonical order, options embedded.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, text, image_path, position
		 FROM questions WHERE exam_id = $1 ORDER BY position ASC, id ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Text, &q.ImagePath, &q.Position); err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}

	optRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.text, o.is_correct, o.position
		 FROM options o
		 JOIN questions q ON o.question_id = q.id
		 WHERE q.exam_id = $1
		 ORDER BY o.position ASC, o.id ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o model.Option
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.Position); err != nil {
			return nil, err
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, optRows.Err()
}

// Add inserts one question with its options atomically.
func (r *QuestionRepository) Add(ctx context.Context, examID uuid.UUID, req model.AddQuestionRequest) (*model.Question, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	q := &model.Question{ExamID: examID, Text: req.Text, Position: req.Position}
	if req.ImagePath != "" {
		q.ImagePath = &req.ImagePath
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO questions (exam_id, text, image_path, position)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		examID, q.Text, q.ImagePath, q.Position,
	).Scan(&q.ID)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}

	for _, or := range req.Options {
		o := model.Option{QuestionID: q.ID, Text: or.Text, IsCorrect: or.IsCorrect, Position: or.Position}
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, text, is_correct, position)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			o.QuestionID, o.Text, o.IsCorrect, o.Position,
		).Scan(&o.ID)
		if err != nil {
			return nil, fmt.Errorf("insert option: %w", err)
		}
		q.Options = append(q.Options, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return q, nil
}

// ReplaceAll deletes an exam's questions and inserts the given set in one
// transaction. Used by the dashboard's bulk editor.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, examID uuid.UUID, reqs []model.AddQuestionRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE exam_id = $1`, examID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	for i, req := range reqs {
		var imagePath *string
		if req.ImagePath != "" {
			imagePath = &req.ImagePath
		}
		position := req.Position
		if position == 0 {
			position = i
		}

		var questionID uuid.UUID
		err = tx.QueryRow(ctx,
			`INSERT INTO questions (exam_id, text, image_path, position)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			examID, req.Text, imagePath, position,
		).Scan(&questionID)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}

		for j, or := range req.Options {
			optPosition := or.Position
			if optPosition == 0 {
				optPosition = j
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO options (question_id, text, is_correct, position)
				 VALUES ($1, $2, $3, $4)`,
				questionID, or.Text, or.IsCorrect, optPosition); err != nil {
				return fmt.Errorf("insert option %d/%d: %w", i, j, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// Delete removes a single question with its options.
func (r *QuestionRepository) Delete(ctx context.Context, questionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, questionID)
	return err
}
