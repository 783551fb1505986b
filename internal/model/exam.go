package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is an assessment owned by a subject.
type Exam struct {
	ID                 uuid.UUID `json:"id"`
	SubjectID          uuid.UUID `json:"subject_id"`
	Title              string    `json:"title"`
	DurationMinutes    int       `json:"duration_minutes"`
	RequireStudentName bool      `json:"require_student_name"`
	RandomizeQuestions bool      `json:"randomize_questions"`
	RandomizeOptions   bool      `json:"randomize_options"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ExamSummary is the catalog view of an exam (no questions).
type ExamSummary struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	DurationMinutes    int       `json:"duration_minutes"`
	RequireStudentName bool      `json:"require_student_name"`
	QuestionCount      int       `json:"question_count"`
}

// CreateExamRequest is the payload for creating an exam under a subject.
type CreateExamRequest struct {
	Title              string `json:"title" binding:"required,min=3,max=255"`
	DurationMinutes    int    `json:"duration_minutes" binding:"required,min=1,max=480"`
	RequireStudentName bool   `json:"require_student_name"`
	RandomizeQuestions bool   `json:"randomize_questions"`
	RandomizeOptions   bool   `json:"randomize_options"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title              string `json:"title" binding:"omitempty,min=3,max=255"`
	DurationMinutes    int    `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	RequireStudentName *bool  `json:"require_student_name" binding:"omitempty"`
	RandomizeQuestions *bool  `json:"randomize_questions" binding:"omitempty"`
	RandomizeOptions   *bool  `json:"randomize_options" binding:"omitempty"`
}
