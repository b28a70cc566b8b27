package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/repository"
)

// questionCacheTTL bounds staleness of the public question set. Questions
// rarely change mid-week, so a minute is conservative.
const questionCacheTTL = time.Minute

// QuizService handles registration and the public quiz surface.
type QuizService struct {
	userRepo     *repository.UserRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

func NewQuizService(
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		userRepo:     userRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// Register creates a user keyed by phone, or reports the state of an existing
// one. Registering twice is not an error: the client uses has_submitted and
// resuming to route the player to the right screen.
func (s *QuizService) Register(ctx context.Context, name, phone string) (*model.RegisterResponse, error) {
	existing, err := s.userRepo.GetByID(ctx, phone)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	if existing != nil {
		return &model.RegisterResponse{
			UserID:       existing.ID,
			HasSubmitted: existing.Submitted,
			Resuming:     !existing.Submitted,
		}, nil
	}

	user := &model.User{ID: phone, Name: name, Phone: phone}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Concurrent registration with the same phone: fall back to a read.
		if again, readErr := s.userRepo.GetByID(ctx, phone); readErr == nil {
			return &model.RegisterResponse{
				UserID:       again.ID,
				HasSubmitted: again.Submitted,
				Resuming:     !again.Submitted,
			}, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &model.RegisterResponse{UserID: phone, HasSubmitted: false, Resuming: false}, nil
}

// PublicQuestions returns the current week's question set with correct
// answers stripped, cached in Redis.
func (s *QuizService) PublicQuestions(ctx context.Context, weekID string) ([]model.PublicQuestion, error) {
	cacheKey := config.CacheKey.PublicQuestionsKey(weekID)

	if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var cached []model.PublicQuestion
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("question cache read failed")
	}

	questions, err := s.questionRepo.ListByWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	public := make([]model.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, q.Public())
	}

	if raw, err := json.Marshal(public); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, raw, questionCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("question cache write failed")
		}
	}

	return public, nil
}

// InvalidateQuestionCache drops the cached public question set for a week
// after an admin mutation.
func (s *QuizService) InvalidateQuestionCache(ctx context.Context, weekID string) {
	if err := s.rdb.Del(ctx, config.CacheKey.PublicQuestionsKey(weekID)).Err(); err != nil {
		s.log.Warn().Err(err).Str("week_id", weekID).Msg("question cache invalidation failed")
	}
}
