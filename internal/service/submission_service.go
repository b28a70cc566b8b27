package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/repository"
)

// Submission errors surfaced to handlers.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadySubmitted = errors.New("answers already submitted")
	ErrQuizClosed       = errors.New("quiz is closed for submissions")
)

// SubmissionEvent is pushed to the worker queue after each accepted
// submission.
type SubmissionEvent struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	TimeTaken int    `json:"time_taken"`
	WeekID    string `json:"week_id"`
}

// SubmissionService scores and records final answer sets.
type SubmissionService struct {
	userRepo     *repository.UserRepository
	questionRepo *repository.QuestionRepository
	configSvc    *ConfigService
	leaderboard  *LeaderboardService
	rdb          *redis.Client
	log          zerolog.Logger
}

func NewSubmissionService(
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	configSvc *ConfigService,
	leaderboard *LeaderboardService,
	rdb *redis.Client,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		userRepo:     userRepo,
		questionRepo: questionRepo,
		configSvc:    configSvc,
		leaderboard:  leaderboard,
		rdb:          rdb,
		log:          log.With().Str("component", "submission_service").Logger(),
	}
}

// ScoreAnswers counts answers that match the stored correct answer. Unknown
// question IDs and wrong options score zero; the server, not the client, is
// the trust boundary for option validity.
func ScoreAnswers(questions []model.Question, answers map[string]string) int {
	correct := make(map[string]string, len(questions))
	for _, q := range questions {
		correct[q.ID] = q.CorrectAnswer
	}

	score := 0
	for qid, selected := range answers {
		if want, ok := correct[qid]; ok && want == selected {
			score++
		}
	}
	return score
}

// Submit scores and records a final answer set. The users table guard makes
// this idempotent: the submitted flag transitions false→true exactly once,
// and later attempts fail with ErrAlreadySubmitted.
func (s *SubmissionService) Submit(ctx context.Context, req model.SubmitRequest) (int, error) {
	cfg, err := s.configSvc.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("load user: %w", err)
	}
	if user.Submitted {
		return 0, ErrAlreadySubmitted
	}

	if !cfg.QuizActive && !cfg.IsTesterPhone(user.Phone) {
		return 0, ErrQuizClosed
	}

	weekID := model.CurrentWeekID()
	questions, err := s.questionRepo.ListByWeek(ctx, weekID)
	if err != nil {
		return 0, fmt.Errorf("list questions: %w", err)
	}

	score := ScoreAnswers(questions, req.Answers)

	ok, err := s.userRepo.MarkSubmitted(ctx, req.UserID, req.Answers, score, req.TimeTaken, weekID)
	if err != nil {
		return 0, fmt.Errorf("record submission: %w", err)
	}
	if !ok {
		// Lost a race against another submission for the same user.
		return 0, ErrAlreadySubmitted
	}

	s.leaderboard.InvalidateLive(ctx, weekID)
	s.enqueueEvent(ctx, SubmissionEvent{
		UserID:    req.UserID,
		Name:      user.Name,
		Score:     score,
		TimeTaken: req.TimeTaken,
		WeekID:    weekID,
	})

	s.log.Info().
		Str("user_id", req.UserID).
		Int("score", score).
		Int("time_taken", req.TimeTaken).
		Str("week_id", weekID).
		Msg("submission recorded")

	return score, nil
}

// Detail returns one user's recorded answer sheet for the admin review modal.
func (s *SubmissionService) Detail(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// enqueueEvent pushes the submission onto the worker queue. Best effort: a
// dropped event only delays the next snapshot recompute.
func (s *SubmissionService) enqueueEvent(ctx context.Context, ev SubmissionEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.SubmissionEventsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("submission event enqueue failed")
	}
}
