package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
)

// Attempt represents a student's run through an exam. Answers map question IDs
// to chosen option IDs and are written once, on submit.
type Attempt struct {
	ID          uuid.UUID            `json:"id"`
	ExamID      uuid.UUID            `json:"exam_id"`
	UserID      int64                `json:"user_id"`
	Status      AttemptStatus        `json:"status"`
	StudentName *string              `json:"student_name,omitempty"`
	Answers     map[string]uuid.UUID `json:"answers,omitempty"`
	Score       *int                 `json:"score,omitempty"`
	Percentage  *int                 `json:"percentage,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// StartAttemptRequest is the payload for starting an exam attempt.
type StartAttemptRequest struct {
	StudentName string `json:"student_name" binding:"omitempty,max=100"`
}

// SubmitAttemptRequest carries the accumulated answer map. All three client
// triggers (explicit, timer, exit beacon) send the same shape.
type SubmitAttemptRequest struct {
	Answers map[string]uuid.UUID `json:"answers"`
}

// AttemptPaper is what the student receives on start: the attempt row plus the
// (possibly shuffled) question set without correct answers.
type AttemptPaper struct {
	Attempt   Attempt              `json:"attempt"`
	Questions []QuestionForStudent `json:"questions"`
}

// AttemptResult is the completed view returned on submit and on review.
type AttemptResult struct {
	AttemptID   uuid.UUID            `json:"attempt_id"`
	ExamID      uuid.UUID            `json:"exam_id"`
	Score       int                  `json:"score"`
	Total       int                  `json:"total"`
	Percentage  int                  `json:"percentage"`
	Answers     map[string]uuid.UUID `json:"answers"`
	CompletedAt time.Time            `json:"completed_at"`
}
