package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*model.Attempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[uuid.UUID]*model.Attempt)}
}

func (s *fakeAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttemptStore) GetByExamAndUser(_ context.Context, examID uuid.UUID, userID int64) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.ExamID == examID && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) Create(_ context.Context, a *model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.attempts {
		if existing.ExamID == a.ExamID && existing.UserID == a.UserID {
			return pgx.ErrNoRows
		}
	}
	a.ID = uuid.New()
	a.StartedAt = time.Now()
	cp := *a
	s.attempts[a.ID] = &cp
	return nil
}

func (s *fakeAttemptStore) Complete(_ context.Context, id uuid.UUID, answers map[string]uuid.UUID, score, percentage int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.Status != model.AttemptStatusInProgress {
		return false, nil
	}
	now := time.Now()
	a.Status = model.AttemptStatusCompleted
	a.Answers = answers
	a.Score = &score
	a.Percentage = &percentage
	a.CompletedAt = &now
	return true, nil
}

func (s *fakeAttemptStore) ListByExam(_ context.Context, examID uuid.UUID, limit, offset int) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.ExamID == examID {
			out = append(out, *a)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeAttemptStore) CountByExam(_ context.Context, examID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.attempts {
		if a.ExamID == examID {
			n++
		}
	}
	return n, nil
}

func (s *fakeAttemptStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

type fakeExamReader struct {
	exams map[uuid.UUID]*model.Exam
}

func (r *fakeExamReader) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := r.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

type fakeQuestionReader struct {
	questions map[uuid.UUID][]model.Question
}

func (r *fakeQuestionReader) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	return r.questions[examID], nil
}

type fakeAccessChecker struct {
	allowed bool
}

func (c *fakeAccessChecker) HasSubjectAccess(_ context.Context, _ int64, _ uuid.UUID) (bool, error) {
	return c.allowed, nil
}

type attemptFixture struct {
	svc       *AttemptService
	store     *fakeAttemptStore
	exam      *model.Exam
	questions []model.Question
	// correct[i] is the correct option ID of question i.
	correct []uuid.UUID
}

func newAttemptFixture(t *testing.T, questionCount int, mutate func(*model.Exam)) *attemptFixture {
	t.Helper()

	exam := &model.Exam{
		ID:              uuid.New(),
		SubjectID:       uuid.New(),
		Title:           "Fractions Quiz",
		DurationMinutes: 30,
	}
	if mutate != nil {
		mutate(exam)
	}

	questions := make([]model.Question, questionCount)
	correct := make([]uuid.UUID, questionCount)
	for i := range questions {
		q := model.Question{ID: uuid.New(), ExamID: exam.ID, Text: "q", Position: i + 1}
		for j := 0; j < 4; j++ {
			q.Options = append(q.Options, model.Option{
				ID:        uuid.New(),
				Text:      "o",
				IsCorrect: j == 0,
				Position:  j + 1,
			})
		}
		correct[i] = q.Options[0].ID
		questions[i] = q
	}

	store := newFakeAttemptStore()
	svc := NewAttemptService(
		store,
		&fakeExamReader{exams: map[uuid.UUID]*model.Exam{exam.ID: exam}},
		&fakeQuestionReader{questions: map[uuid.UUID][]model.Question{exam.ID: questions}},
		&fakeAccessChecker{allowed: true},
		0,
		zerolog.Nop(),
	)

	return &attemptFixture{svc: svc, store: store, exam: exam, questions: questions, correct: correct}
}

func TestStartAndSubmitScoring(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	ctx := context.Background()

	paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)
	require.Len(t, paper.Questions, 3)
	assert.Equal(t, model.AttemptStatusInProgress, paper.Attempt.Status)

	// Two correct picks, one wrong pick.
	answers := map[string]uuid.UUID{
		fx.questions[0].ID.String(): fx.correct[0],
		fx.questions[1].ID.String(): fx.correct[1],
		fx.questions[2].ID.String(): fx.questions[2].Options[1].ID,
	}

	result, err := fx.svc.Submit(ctx, paper.Attempt.ID, 100, answers)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 67, result.Percentage)
}

func TestStartRequiresStudentName(t *testing.T) {
	fx := newAttemptFixture(t, 3, func(e *model.Exam) { e.RequireStudentName = true })
	ctx := context.Background()

	_, err := fx.svc.Start(ctx, fx.exam.ID, 100, "   ")
	assert.ErrorIs(t, err, ErrStudentNameRequired)
	// Rejected before any row was created.
	assert.Zero(t, fx.store.count())

	paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "  Amina  ")
	require.NoError(t, err)
	require.NotNil(t, paper.Attempt.StudentName)
	assert.Equal(t, "Amina", *paper.Attempt.StudentName)
}

func TestStartDeniedWithoutAccess(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	fx.svc.access = &fakeAccessChecker{allowed: false}

	_, err := fx.svc.Start(context.Background(), fx.exam.ID, 100, "")
	assert.ErrorIs(t, err, ErrNoAccess)
	assert.Zero(t, fx.store.count())
}

func TestStartEmptyExam(t *testing.T) {
	fx := newAttemptFixture(t, 0, nil)

	_, err := fx.svc.Start(context.Background(), fx.exam.ID, 100, "")
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Zero(t, fx.store.count())
}

func TestStartRejoinsInProgressAttempt(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	ctx := context.Background()

	first, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)

	second, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)

	assert.Equal(t, first.Attempt.ID, second.Attempt.ID)
	assert.Equal(t, 1, fx.store.count())
}

func TestStartAfterCompletion(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	ctx := context.Background()

	paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)
	_, err = fx.svc.Submit(ctx, paper.Attempt.ID, 100, nil)
	require.NoError(t, err)

	_, err = fx.svc.Start(ctx, fx.exam.ID, 100, "")
	assert.ErrorIs(t, err, ErrAlreadySolved)
}

func TestSubmitIdempotent(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	ctx := context.Background()

	paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)

	first, err := fx.svc.Submit(ctx, paper.Attempt.ID, 100, map[string]uuid.UUID{
		fx.questions[0].ID.String(): fx.correct[0],
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Score)

	// A second submission with different answers must not change anything.
	second, err := fx.svc.Submit(ctx, paper.Attempt.ID, 100, map[string]uuid.UUID{
		fx.questions[0].ID.String(): fx.correct[0],
		fx.questions[1].ID.String(): fx.correct[1],
		fx.questions[2].ID.String(): fx.correct[2],
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Score)
	assert.Equal(t, first.Percentage, second.Percentage)
}

func TestSubmitOwnershipGuard(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	ctx := context.Background()

	paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)

	_, err = fx.svc.Submit(ctx, paper.Attempt.ID, 200, nil)
	assert.ErrorIs(t, err, ErrNotAttemptOwner)
}

func TestSubmitEmptyAnswers(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	ctx := context.Background()

	paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)

	result, err := fx.svc.Submit(ctx, paper.Attempt.ID, 100, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Score)
	assert.Equal(t, 3, result.Total)
	assert.Zero(t, result.Percentage)
	assert.NotNil(t, result.Answers)
}

func TestSubmitDeadline(t *testing.T) {
	fx := newAttemptFixture(t, 3, nil)
	fx.svc.grace = time.Minute
	ctx := context.Background()

	paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
	require.NoError(t, err)

	// Backdate the attempt far past duration + grace.
	fx.store.mu.Lock()
	fx.store.attempts[paper.Attempt.ID].StartedAt = time.Now().Add(-2 * time.Hour)
	fx.store.mu.Unlock()

	_, err = fx.svc.Submit(ctx, paper.Attempt.ID, 100, nil)
	assert.ErrorIs(t, err, ErrSubmitDeadline)
}

func TestPaperStripsCorrectnessAndKeepsQuestionSet(t *testing.T) {
	fx := newAttemptFixture(t, 10, func(e *model.Exam) {
		e.RandomizeQuestions = true
		e.RandomizeOptions = true
	})
	ctx := context.Background()

	want := make(map[uuid.UUID]bool, len(fx.questions))
	for _, q := range fx.questions {
		want[q.ID] = true
	}

	var orders [][]uuid.UUID
	for i := 0; i < 20; i++ {
		paper, err := fx.svc.Start(ctx, fx.exam.ID, 100, "")
		require.NoError(t, err)
		require.Len(t, paper.Questions, len(fx.questions))

		var order []uuid.UUID
		for _, q := range paper.Questions {
			assert.True(t, want[q.ID], "unknown question in paper")
			assert.Len(t, q.Options, 4)
			order = append(order, q.ID)
		}
		orders = append(orders, order)
	}

	// With 10 questions and 20 draws at least two permutations differ.
	distinct := map[string]bool{}
	for _, order := range orders {
		key := ""
		for _, id := range order {
			key += id.String()
		}
		distinct[key] = true
	}
	assert.Greater(t, len(distinct), 1, "shuffling never changed the order")
}

func TestScoreAnswersIgnoresUnknownIDs(t *testing.T) {
	fx := newAttemptFixture(t, 2, nil)

	answers := map[string]uuid.UUID{
		fx.questions[0].ID.String(): fx.correct[0],
		uuid.NewString():            uuid.New(), // unknown question
		fx.questions[1].ID.String(): uuid.New(), // unknown option
	}
	assert.Equal(t, 1, ScoreAnswers(fx.questions, answers))
}

func TestListResultsPaginates(t *testing.T) {
	fx := newAttemptFixture(t, 1, nil)
	ctx := context.Background()

	for userID := int64(100); userID < 103; userID++ {
		_, err := fx.svc.Start(ctx, fx.exam.ID, userID, "")
		require.NoError(t, err)
	}

	first, total, err := fx.svc.ListResults(ctx, fx.exam.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, first, 2)

	second, total, err := fx.svc.ListResults(ctx, fx.exam.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, second, 1)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 8, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.score, tt.total))
	}
}
