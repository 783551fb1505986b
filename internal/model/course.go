package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is a top-level catalog entry (e.g. "Grade 12 Physics").
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsFree      bool      `json:"is_free"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Subject belongs to a course and owns exams and video lessons.
type Subject struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	IsFree   bool      `json:"is_free"`
	Position int       `json:"position"`
}

// CourseDetail is a course with its subjects embedded, as served to the catalog.
type CourseDetail struct {
	Course
	Subjects []SubjectDetail `json:"subjects"`
}

// SubjectDetail is a subject with its exam summaries embedded.
type SubjectDetail struct {
	Subject
	Exams []ExamSummary `json:"exams"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"max=2000"`
	IsFree      bool   `json:"is_free"`
}

// CreateSubjectRequest is the payload for adding a subject to a course.
type CreateSubjectRequest struct {
	Title    string `json:"title" binding:"required,min=2,max=255"`
	IsFree   bool   `json:"is_free"`
	Position int    `json:"position" binding:"min=0"`
}
