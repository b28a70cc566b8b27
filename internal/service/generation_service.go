package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/genai"
	"github.com/united89/quiz-backend/internal/model"
)

// Generation errors surfaced to handlers.
var (
	ErrGenerateDisabled = errors.New("question generation is not configured")
	ErrPastWeekLocked   = errors.New("past weeks cannot be modified")
)

// GenerationService produces AI question candidates for admin curation.
type GenerationService struct {
	client *genai.Client
	log    zerolog.Logger
}

// NewGenerationService wires the Gemini client. client may be nil when no API
// key is configured; generation then fails with ErrGenerateDisabled.
func NewGenerationService(client *genai.Client, log zerolog.Logger) *GenerationService {
	return &GenerationService{
		client: client,
		log:    log.With().Str("component", "generation_service").Logger(),
	}
}

// Generate returns a fresh candidate batch for the given week. Only the
// current week is generatable: past weeks are frozen history.
func (s *GenerationService) Generate(ctx context.Context, weekID string) ([]model.GeneratedQuestion, error) {
	if s.client == nil {
		return nil, ErrGenerateDisabled
	}
	if weekID != "" && weekID != model.CurrentWeekID() {
		return nil, ErrPastWeekLocked
	}

	candidates, err := s.client.GenerateQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate candidates: %w", err)
	}

	s.log.Info().Int("count", len(candidates)).Msg("candidate batch ready")
	return candidates, nil
}
