package main

import (
	"context"
	"fmt"

	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/database"
	"github.com/united89/quiz-backend/internal/logger"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/repository"
)

// seedQuestions is a small demo set assigned to the current week.
var seedQuestions = []model.Question{
	{
		ID:            "q1",
		Text:          "What is the capital of France?",
		Options:       []string{"London", "Berlin", "Paris", "Madrid"},
		CorrectAnswer: "Paris",
		OrderNum:      1,
	},
	{
		ID:            "q2",
		Text:          "Which planet is known as the Red Planet?",
		Options:       []string{"Earth", "Mars", "Jupiter", "Venus"},
		CorrectAnswer: "Mars",
		OrderNum:      2,
	},
	{
		ID:            "q3",
		Text:          "What is the largest ocean on Earth?",
		Options:       []string{"Atlantic", "Indian", "Arctic", "Pacific"},
		CorrectAnswer: "Pacific",
		OrderNum:      3,
	},
	{
		ID:            "q4",
		Text:          "Who wrote 'Romeo and Juliet'?",
		Options:       []string{"Charles Dickens", "William Shakespeare", "Mark Twain", "Jane Austen"},
		CorrectAnswer: "William Shakespeare",
		OrderNum:      4,
	},
	{
		ID:            "q5",
		Text:          "What is the chemical symbol for Gold?",
		Options:       []string{"Au", "Ag", "Fe", "Pb"},
		CorrectAnswer: "Au",
		OrderNum:      5,
	},
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	configRepo := repository.NewConfigRepository(pool)

	weekID := model.CurrentWeekID()
	fmt.Printf("Assigning questions to week: %s\n", weekID)

	questions := make([]model.Question, 0, len(seedQuestions))
	for _, q := range seedQuestions {
		q.WeekID = weekID
		questions = append(questions, q)
	}

	if err := questionRepo.CreateBatch(ctx, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed questions")
	}

	// Defaults for a fresh install: quiz open, leaderboard hidden.
	settings := map[string]string{
		"timer_duration_minutes": "10",
		"quiz_active":            "true",
		"leaderboard_active":     "false",
	}
	for key, value := range settings {
		if err := configRepo.Upsert(ctx, key, value); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Failed to seed config")
		}
	}

	fmt.Println("Seeding complete!")
}
