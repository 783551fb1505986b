package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/rs/zerolog"
)

// Domain errors for the attempt state machine.
var (
	ErrStudentNameRequired = errors.New("student name required for this exam")
	ErrAlreadySolved       = errors.New("exam already completed by this user")
	ErrNoAccess            = errors.New("no access to this content")
	ErrNoQuestions         = errors.New("exam has no questions")
	ErrNotAttemptOwner     = errors.New("attempt belongs to another user")
	ErrSubmitDeadline      = errors.New("submission deadline passed")
)

// AttemptStore is the persistence surface the state machine needs.
type AttemptStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int64) (*model.Attempt, error)
	Create(ctx context.Context, a *model.Attempt) error
	Complete(ctx context.Context, id uuid.UUID, answers map[string]uuid.UUID, score, percentage int) (bool, error)
	ListByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]model.Attempt, error)
	CountByExam(ctx context.Context, examID uuid.UUID) (int, error)
}

// ExamReader loads exam configuration.
type ExamReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// QuestionReader loads an exam's questions in canonical order.
type QuestionReader interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// AccessChecker answers content ownership questions.
type AccessChecker interface {
	HasSubjectAccess(ctx context.Context, userID int64, subjectID uuid.UUID) (bool, error)
}

// AttemptService implements the exam attempt state machine:
// NotStarted → InProgress → Completed. Completion is idempotent; the three
// client triggers (explicit submit, countdown expiry, exit beacon) all land
// on the same Submit operation and only the first one persists.
type AttemptService struct {
	attempts  AttemptStore
	exams     ExamReader
	questions QuestionReader
	access    AccessChecker
	// grace beyond an exam's duration before a submission is rejected.
	// Zero keeps the deadline client-enforced only.
	grace time.Duration
	log   zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attempts AttemptStore,
	exams ExamReader,
	questions QuestionReader,
	access AccessChecker,
	grace time.Duration,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attempts:  attempts,
		exams:     exams,
		questions: questions,
		access:    access,
		grace:     grace,
		log:       log.With().Str("component", "attempt_service").Logger(),
	}
}

// Start transitions NotStarted → InProgress and returns the attempt paper.
// Validation and the access guard run before any row is created. Re-starting
// an in-progress attempt is idempotent (the row is reused, questions are
// re-shuffled if randomization is on); a completed attempt yields
// ErrAlreadySolved so the client routes to results.
func (s *AttemptService) Start(ctx context.Context, examID uuid.UUID, userID int64, studentName string) (*model.AttemptPaper, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	studentName = strings.TrimSpace(studentName)
	if exam.RequireStudentName && studentName == "" {
		return nil, ErrStudentNameRequired
	}

	ok, err := s.access.HasSubjectAccess(ctx, userID, exam.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	if !ok {
		return nil, ErrNoAccess
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	attempt, err := s.attempts.GetByExamAndUser(ctx, examID, userID)
	switch {
	case err == nil:
		if attempt.Status == model.AttemptStatusCompleted {
			return nil, ErrAlreadySolved
		}
		// In-progress attempt: rejoin the existing row.
	case errors.Is(err, pgx.ErrNoRows):
		attempt = &model.Attempt{ExamID: examID, UserID: userID, Status: model.AttemptStatusInProgress}
		if studentName != "" {
			attempt.StudentName = &studentName
		}
		if createErr := s.attempts.Create(ctx, attempt); createErr != nil {
			if !errors.Is(createErr, pgx.ErrNoRows) {
				return nil, fmt.Errorf("create attempt: %w", createErr)
			}
			// Concurrent start won the insert; fall back to its row.
			attempt, err = s.attempts.GetByExamAndUser(ctx, examID, userID)
			if err != nil {
				return nil, fmt.Errorf("refetch attempt: %w", err)
			}
			if attempt.Status == model.AttemptStatusCompleted {
				return nil, ErrAlreadySolved
			}
		}
	default:
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	paper := &model.AttemptPaper{
		Attempt:   *attempt,
		Questions: buildPaperQuestions(questions, exam.RandomizeQuestions, exam.RandomizeOptions),
	}

	s.log.Debug().
		Str("exam_id", examID.String()).
		Int64("user_id", userID).
		Str("attempt_id", attempt.ID.String()).
		Msg("Attempt started")
	return paper, nil
}

// Submit transitions InProgress → Completed. The answer map is keyed by
// question ID; unanswered questions count only toward the denominator,
// unknown question or option IDs are ignored. Submitting an already
// completed attempt returns the stored result unchanged.
func (s *AttemptService) Submit(ctx context.Context, attemptID uuid.UUID, userID int64, answers map[string]uuid.UUID) (*model.AttemptResult, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrNotAttemptOwner
	}

	questions, err := s.questions.ListByExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	if attempt.Status == model.AttemptStatusCompleted {
		return resultFromAttempt(attempt, len(questions)), nil
	}

	if s.grace > 0 {
		exam, err := s.exams.GetByID(ctx, attempt.ExamID)
		if err != nil {
			return nil, fmt.Errorf("get exam: %w", err)
		}
		deadline := attempt.StartedAt.
			Add(time.Duration(exam.DurationMinutes) * time.Minute).
			Add(s.grace)
		if time.Now().After(deadline) {
			return nil, ErrSubmitDeadline
		}
	}

	if answers == nil {
		answers = map[string]uuid.UUID{}
	}
	score := ScoreAnswers(questions, answers)
	pct := Percentage(score, len(questions))

	wrote, err := s.attempts.Complete(ctx, attemptID, answers, score, pct)
	if err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}
	if !wrote {
		// Lost the race against a concurrent submission (e.g. the exit
		// beacon). The first write wins; return it.
		attempt, err = s.attempts.GetByID(ctx, attemptID)
		if err != nil {
			return nil, fmt.Errorf("refetch attempt: %w", err)
		}
		return resultFromAttempt(attempt, len(questions)), nil
	}

	now := time.Now()
	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Int64("user_id", userID).
		Int("score", score).
		Int("percentage", pct).
		Msg("Attempt completed")

	return &model.AttemptResult{
		AttemptID:   attemptID,
		ExamID:      attempt.ExamID,
		Score:       score,
		Total:       len(questions),
		Percentage:  pct,
		Answers:     answers,
		CompletedAt: now,
	}, nil
}

// Result returns the stored result of a completed attempt.
func (s *AttemptService) Result(ctx context.Context, attemptID uuid.UUID, userID int64) (*model.AttemptResult, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrNotAttemptOwner
	}
	if attempt.Status != model.AttemptStatusCompleted {
		return nil, pgx.ErrNoRows
	}

	questions, err := s.questions.ListByExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return resultFromAttempt(attempt, len(questions)), nil
}

// ListResults returns one page of attempts for an exam (teacher results
// view) along with the total attempt count.
func (s *AttemptService) ListResults(ctx context.Context, examID uuid.UUID, page, perPage int) ([]model.Attempt, int, error) {
	total, err := s.attempts.CountByExam(ctx, examID)
	if err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}
	attempts, err := s.attempts.ListByExam(ctx, examID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, total, nil
}

// ScoreAnswers counts the chosen options whose is_correct flag is set.
func ScoreAnswers(questions []model.Question, answers map[string]uuid.UUID) int {
	score := 0
	for _, q := range questions {
		chosen, ok := answers[q.ID.String()]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == chosen && o.IsCorrect {
				score++
				break
			}
		}
	}
	return score
}

// Percentage computes round(score/total*100). A zero total yields zero.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// buildPaperQuestions strips correctness flags and applies per-attempt
// shuffling. Each call produces a fresh permutation; the displayed order is
// not persisted anywhere.
func buildPaperQuestions(questions []model.Question, shuffleQuestions, shuffleOptions bool) []model.QuestionForStudent {
	order := make([]int, len(questions))
	for i := range order {
		order[i] = i
	}
	if shuffleQuestions {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	out := make([]model.QuestionForStudent, 0, len(questions))
	for _, qi := range order {
		q := questions[qi]
		sq := model.QuestionForStudent{
			ID:        q.ID,
			Text:      q.Text,
			ImagePath: q.ImagePath,
			Options:   make([]model.OptionForStudent, len(q.Options)),
		}
		for i, o := range q.Options {
			sq.Options[i] = model.OptionForStudent{ID: o.ID, Text: o.Text}
		}
		if shuffleOptions {
			rand.Shuffle(len(sq.Options), func(i, j int) {
				sq.Options[i], sq.Options[j] = sq.Options[j], sq.Options[i]
			})
		}
		out = append(out, sq)
	}
	return out
}

func resultFromAttempt(a *model.Attempt, total int) *model.AttemptResult {
	res := &model.AttemptResult{
		AttemptID: a.ID,
		ExamID:    a.ExamID,
		Total:     total,
		Answers:   a.Answers,
	}
	if a.Score != nil {
		res.Score = *a.Score
	}
	if a.Percentage != nil {
		res.Percentage = *a.Percentage
	}
	if a.CompletedAt != nil {
		res.CompletedAt = *a.CompletedAt
	}
	if res.Answers == nil {
		res.Answers = map[string]uuid.UUID{}
	}
	return res
}
