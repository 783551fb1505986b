package model

import "github.com/google/uuid"

// Question belongs to exactly one exam.
type Question struct {
	ID        uuid.UUID `json:"id"`
	ExamID    uuid.UUID `json:"exam_id"`
	Text      string    `json:"text"`
	ImagePath *string   `json:"image_path,omitempty"`
	Position  int       `json:"position"`
	Options   []Option  `json:"options"`
}

// Option belongs to exactly one question. Exactly one option per question is
// expected to be correct; this is a data-quality assumption, not enforced.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
	Position   int       `json:"position"`
}

// QuestionForStudent is a question as served during an attempt: no is_correct
// flags, options possibly shuffled.
type QuestionForStudent struct {
	ID        uuid.UUID          `json:"id"`
	Text      string             `json:"text"`
	ImagePath *string            `json:"image_path,omitempty"`
	Options   []OptionForStudent `json:"options"`
}

// OptionForStudent is an option stripped of its correctness flag.
type OptionForStudent struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// AddQuestionRequest is the payload for adding a question to an exam.
type AddQuestionRequest struct {
	Text      string             `json:"text" binding:"required,min=1,max=2000"`
	ImagePath string             `json:"image_path" binding:"omitempty,max=255"`
	Position  int                `json:"position" binding:"min=0"`
	Options   []AddOptionRequest `json:"options" binding:"required,min=2,max=10,dive"`
}

// AddOptionRequest is one option inside AddQuestionRequest.
type AddOptionRequest struct {
	Text      string `json:"text" binding:"required,min=1,max=1000"`
	IsCorrect bool   `json:"is_correct"`
	Position  int    `json:"position" binding:"min=0"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing an exam's questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"dive"`
}
