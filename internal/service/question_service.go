package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/repository"
)

// Question management errors surfaced to handlers.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotOption  = errors.New("answer is not one of the options")
)

// QuestionService handles the admin question-management surface.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	quizSvc      *QuizService
	log          zerolog.Logger
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	quizSvc *QuizService,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		quizSvc:      quizSvc,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// ListFull returns a week's questions with correct answers included.
func (s *QuestionService) ListFull(ctx context.Context, weekID string) ([]model.Question, error) {
	return s.questionRepo.ListByWeek(ctx, weekID)
}

// Add inserts a single question after verifying the declared answer is one of
// the options. Defaults the week to the current one when unset.
func (s *QuestionService) Add(ctx context.Context, req model.AddQuestionRequest) (*model.Question, error) {
	q := questionFromRequest(req)
	if !q.HasAnswer() {
		return nil, ErrAnswerNotOption
	}

	if err := s.questionRepo.Create(ctx, &q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.quizSvc.InvalidateQuestionCache(ctx, q.WeekID)
	s.log.Info().Str("question_id", q.ID).Str("week_id", q.WeekID).Msg("question added")
	return &q, nil
}

// AddBatch inserts a curated batch atomically. Every question is validated
// before the first insert so a bad entry rejects the whole batch.
func (s *QuestionService) AddBatch(ctx context.Context, req model.BatchAddRequest) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(req.Questions))
	for i, qr := range req.Questions {
		q := questionFromRequest(qr)
		if q.OrderNum == 0 {
			q.OrderNum = i + 1
		}
		if !q.HasAnswer() {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrAnswerNotOption)
		}
		questions = append(questions, q)
	}

	if err := s.questionRepo.CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	s.quizSvc.InvalidateQuestionCache(ctx, questions[0].WeekID)
	s.log.Info().Int("count", len(questions)).Str("week_id", questions[0].WeekID).Msg("question batch added")
	return questions, nil
}

// Delete removes a question by ID.
func (s *QuestionService) Delete(ctx context.Context, id, weekID string) error {
	ok, err := s.questionRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if !ok {
		return ErrQuestionNotFound
	}

	s.quizSvc.InvalidateQuestionCache(ctx, weekID)
	s.log.Info().Str("question_id", id).Msg("question deleted")
	return nil
}

// Weeks lists every week that has questions, with the current week always
// present and flagged even when it has none yet.
func (s *QuestionService) Weeks(ctx context.Context) ([]model.Week, error) {
	stored, err := s.questionRepo.DistinctWeeks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}

	current := model.CurrentWeekID()
	weeks := make([]model.Week, 0, len(stored)+1)
	seen := false
	for _, w := range stored {
		weeks = append(weeks, model.Week{WeekID: w, IsCurrent: w == current})
		if w == current {
			seen = true
		}
	}
	if !seen {
		weeks = append([]model.Week{{WeekID: current, IsCurrent: true}}, weeks...)
	}
	return weeks, nil
}

func questionFromRequest(req model.AddQuestionRequest) model.Question {
	weekID := req.WeekID
	if weekID == "" {
		weekID = model.CurrentWeekID()
	}
	return model.Question{
		ID:            req.ID,
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.Answer,
		OrderNum:      req.Order,
		WeekID:        weekID,
	}
}
