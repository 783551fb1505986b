package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/rs/zerolog"
)

// ExamStore is the persistence surface for exam management.
type ExamStore interface {
	ExamReader
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
	Update(ctx context.Context, e *model.Exam) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionStore is the persistence surface for question management.
type QuestionStore interface {
	QuestionReader
	Add(ctx context.Context, examID uuid.UUID, req model.AddQuestionRequest) (*model.Question, error)
	ReplaceAll(ctx context.Context, examID uuid.UUID, reqs []model.AddQuestionRequest) error
	Delete(ctx context.Context, questionID uuid.UUID) error
}

// SubjectReader loads subjects for parent validation.
type SubjectReader interface {
	GetSubject(ctx context.Context, id uuid.UUID) (*model.Subject, error)
}

// ExamService handles dashboard-side exam and question management.
type ExamService struct {
	exams     ExamStore
	questions QuestionStore
	subjects  SubjectReader
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, questions QuestionStore, subjects SubjectReader, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		subjects:  subjects,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.exams.GetByID(ctx, id)
}

// ListBySubject retrieves all exams under a subject.
func (s *ExamService) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.Exam, error) {
	return s.exams.ListBySubject(ctx, subjectID)
}

// Create inserts an exam under a subject.
func (s *ExamService) Create(ctx context.Context, subjectID uuid.UUID, req model.CreateExamRequest) (*model.Exam, error) {
	if _, err := s.subjects.GetSubject(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	e := &model.Exam{
		SubjectID:          subjectID,
		Title:              req.Title,
		DurationMinutes:    req.DurationMinutes,
		RequireStudentName: req.RequireStudentName,
		RandomizeQuestions: req.RandomizeQuestions,
		RandomizeOptions:   req.RandomizeOptions,
	}
	if err := s.exams.Create(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info().Str("exam_id", e.ID.String()).Msg("Exam created")
	return e, nil
}

// Update applies the non-zero fields of the request to an exam.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req model.UpdateExamRequest) (*model.Exam, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		e.Title = req.Title
	}
	if req.DurationMinutes > 0 {
		e.DurationMinutes = req.DurationMinutes
	}
	if req.RequireStudentName != nil {
		e.RequireStudentName = *req.RequireStudentName
	}
	if req.RandomizeQuestions != nil {
		e.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.RandomizeOptions != nil {
		e.RandomizeOptions = *req.RandomizeOptions
	}

	if err := s.exams.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an exam with its questions and attempts.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.exams.Delete(ctx, id)
}

// ListQuestions returns an exam's full question set, correct flags included
// (dashboard view; never served to students).
func (s *ExamService) ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.questions.ListByExam(ctx, examID)
}

// AddQuestion appends one question to an exam.
func (s *ExamService) AddQuestion(ctx context.Context, examID uuid.UUID, req model.AddQuestionRequest) (*model.Question, error) {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.questions.Add(ctx, examID, req)
}

// ReplaceQuestions swaps an exam's entire question set.
func (s *ExamService) ReplaceQuestions(ctx context.Context, examID uuid.UUID, reqs []model.AddQuestionRequest) error {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		return err
	}
	return s.questions.ReplaceAll(ctx, examID, reqs)
}

// DeleteQuestion removes one question.
func (s *ExamService) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	return s.questions.Delete(ctx, questionID)
}
