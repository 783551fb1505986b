package main

import (
	"context"
	"fmt"
	"time"

	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/database"
	"github.com/maarifahub/maarifa-backend/internal/logger"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/repository"
)

// Seeds one free demo course with a subject and a short exam so a fresh
// install has something to click through.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	courseRepo := repository.NewCourseRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Demo Course ===")

	course := &model.Course{
		Title:       "Introduction to Algebra",
		Description: "A free sample course covering the basics of algebra.",
		IsFree:      true,
	}
	if err := courseRepo.Create(ctx, course); err != nil {
		log.Fatal().Err(err).Msg("Failed to create course")
	}
	fmt.Printf("Created course %s\n", course.ID)

	subject := &model.Subject{
		CourseID: course.ID,
		Title:    "Linear Equations",
		IsFree:   true,
		Position: 1,
	}
	if err := courseRepo.CreateSubject(ctx, subject); err != nil {
		log.Fatal().Err(err).Msg("Failed to create subject")
	}
	fmt.Printf("Created subject %s\n", subject.ID)

	exam := &model.Exam{
		SubjectID:          subject.ID,
		Title:              "Linear Equations Quiz",
		DurationMinutes:    15,
		RequireStudentName: true,
		RandomizeQuestions: true,
		RandomizeOptions:   true,
	}
	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to create exam")
	}
	fmt.Printf("Created exam %s\n", exam.ID)

	questions := []model.AddQuestionRequest{
		{
			Text:     "Solve for x: 2x + 4 = 10",
			Position: 1,
			Options: []model.AddOptionRequest{
				{Text: "x = 2", Position: 1},
				{Text: "x = 3", IsCorrect: true, Position: 2},
				{Text: "x = 4", Position: 3},
				{Text: "x = 6", Position: 4},
			},
		},
		{
			Text:     "What is the slope of the line y = 5x - 2?",
			Position: 2,
			Options: []model.AddOptionRequest{
				{Text: "-2", Position: 1},
				{Text: "2", Position: 2},
				{Text: "5", IsCorrect: true, Position: 3},
				{Text: "1/5", Position: 4},
			},
		},
		{
			Text:     "Which point lies on the line y = x + 1?",
			Position: 3,
			Options: []model.AddOptionRequest{
				{Text: "(1, 2)", IsCorrect: true, Position: 1},
				{Text: "(2, 1)", Position: 2},
				{Text: "(0, 0)", Position: 3},
				{Text: "(1, 0)", Position: 4},
			},
		},
	}

	for _, q := range questions {
		if _, err := questionRepo.Add(ctx, exam.ID, q); err != nil {
			log.Fatal().Err(err).Msg("Failed to add question")
		}
	}
	fmt.Printf("Added %d questions\n", len(questions))

	fmt.Println("Done.")
}
