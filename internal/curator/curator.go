// Package curator implements the admin question-curation workflow: generate
// AI candidates, review and edit them, select exactly the batch size, and
// commit them as real questions in one request.
package curator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/client"
	"github.com/united89/quiz-backend/internal/model"
)

// BatchSize is the exact number of candidates that must be selected before a
// commit is allowed.
const BatchSize = 10

// State is the curation session's position in its lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateGenerating   State = "generating"
	StatePreviewReady State = "preview_ready"
	StateCommitting   State = "committing"
)

// Curator errors.
var (
	ErrWrongState     = errors.New("operation not allowed in this state")
	ErrPastWeekLocked = errors.New("generation is locked for past weeks")
	ErrSelectionFull  = errors.New("selection already holds the full batch")
	ErrSelectionSize  = errors.New("exactly 10 candidates must be selected")
	ErrBadIndex       = errors.New("candidate index out of range")
	ErrBadField       = errors.New("unknown candidate field")
)

// Candidate is one reviewable question: prompt, four options, and the correct
// answer already normalized to an option string.
type Candidate struct {
	Text    string
	Options []string
	Answer  string
}

// AdminAPI is the server surface the curator needs. *client.Client satisfies it.
type AdminAPI interface {
	Generate(ctx context.Context, weekID string) ([]model.GeneratedQuestion, error)
	BatchAdd(ctx context.Context, req model.BatchAddRequest) error
}

// Curator is one admin curation session.
type Curator struct {
	api AdminAPI
	log zerolog.Logger

	state      State
	weekID     string
	candidates []Candidate
	selected   map[int]struct{}
}

// New creates an idle curator.
func New(api AdminAPI, log zerolog.Logger) *Curator {
	return &Curator{
		api:      api,
		log:      log.With().Str("component", "curator").Logger(),
		state:    StateIdle,
		selected: make(map[int]struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Curator) State() State { return c.state }

// Candidates returns the current candidate batch.
func (c *Curator) Candidates() []Candidate { return c.candidates }

// SelectedCount returns the size of the selection set.
func (c *Curator) SelectedCount() int { return len(c.selected) }

// IsSelected reports whether a candidate index is in the selection set.
func (c *Curator) IsSelected(i int) bool {
	_, ok := c.selected[i]
	return ok
}

// Generate requests a fresh candidate batch for a week. Allowed from Idle and
// from PreviewReady (regenerate, discarding the old batch). A past-week
// refusal is surfaced distinctly from generic failures.
func (c *Curator) Generate(ctx context.Context, weekID string) error {
	if c.state != StateIdle && c.state != StatePreviewReady {
		return ErrWrongState
	}
	c.state = StateGenerating

	generated, err := c.api.Generate(ctx, weekID)
	if err != nil {
		c.state = StateIdle
		if errors.Is(err, client.ErrPastWeekLocked) {
			return fmt.Errorf("%w: %s", ErrPastWeekLocked, weekID)
		}
		return err
	}

	candidates := make([]Candidate, 0, len(generated))
	for _, g := range generated {
		answer, err := NormalizeAnswer(g)
		if err != nil {
			c.log.Warn().Err(err).Str("question", g.Question).Msg("dropping malformed candidate")
			continue
		}
		candidates = append(candidates, Candidate{
			Text:    g.Question,
			Options: append([]string(nil), g.Choices...),
			Answer:  answer,
		})
	}

	c.weekID = weekID
	c.candidates = candidates
	c.selected = make(map[int]struct{})
	c.state = StatePreviewReady
	c.log.Info().Int("candidates", len(candidates)).Str("week_id", weekID).Msg("candidate batch ready")
	return nil
}

// NormalizeAnswer converts a letter designator ('a'..'d') into the option
// string it names, so downstream code treats correct answers uniformly.
func NormalizeAnswer(g model.GeneratedQuestion) (string, error) {
	letter := g.CorrectAnswer
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'd' {
		return "", fmt.Errorf("invalid answer designator %q", letter)
	}
	idx := int(letter[0] - 'a')
	if idx >= len(g.Choices) {
		return "", fmt.Errorf("answer designator %q out of range for %d choices", letter, len(g.Choices))
	}
	return g.Choices[idx], nil
}

// ToggleSelect adds or removes a candidate from the selection set, refusing
// growth beyond BatchSize.
func (c *Curator) ToggleSelect(i int) error {
	if c.state != StatePreviewReady {
		return ErrWrongState
	}
	if i < 0 || i >= len(c.candidates) {
		return ErrBadIndex
	}
	if _, ok := c.selected[i]; ok {
		delete(c.selected, i)
		return nil
	}
	if len(c.selected) >= BatchSize {
		return ErrSelectionFull
	}
	c.selected[i] = struct{}{}
	return nil
}

// EditCandidate mutates one candidate's prompt, an option, or the designated
// answer. Edits stay local until commit. field is "text", "answer", or
// "option:<n>".
func (c *Curator) EditCandidate(i int, field, value string) error {
	if c.state != StatePreviewReady {
		return ErrWrongState
	}
	if i < 0 || i >= len(c.candidates) {
		return ErrBadIndex
	}

	switch field {
	case "text":
		c.candidates[i].Text = value
	case "answer":
		c.candidates[i].Answer = value
	case "option:0", "option:1", "option:2", "option:3":
		idx := int(field[len(field)-1] - '0')
		c.candidates[i].Options[idx] = value
	default:
		return fmt.Errorf("%w: %s", ErrBadField, field)
	}
	return nil
}

// Commit packages the selected candidates with fresh identifiers and explicit
// order numbers and submits them as one batch. It fails fast, with no network
// call, unless exactly BatchSize candidates are selected. Success clears the
// batch; failure returns to PreviewReady with the selection preserved.
func (c *Curator) Commit(ctx context.Context) error {
	if c.state != StatePreviewReady {
		return ErrWrongState
	}
	if len(c.selected) != BatchSize {
		return fmt.Errorf("%w: have %d", ErrSelectionSize, len(c.selected))
	}
	c.state = StateCommitting

	// Stable order: selection iterated in candidate order.
	req := model.BatchAddRequest{Questions: make([]model.AddQuestionRequest, 0, BatchSize)}
	order := 1
	for i := range c.candidates {
		if _, ok := c.selected[i]; !ok {
			continue
		}
		cand := c.candidates[i]
		req.Questions = append(req.Questions, model.AddQuestionRequest{
			ID:      uuid.New().String(),
			Text:    cand.Text,
			Options: cand.Options,
			Answer:  cand.Answer,
			Order:   order,
			WeekID:  c.weekID,
		})
		order++
	}

	if err := c.api.BatchAdd(ctx, req); err != nil {
		c.state = StatePreviewReady
		return err
	}

	c.log.Info().Int("committed", BatchSize).Str("week_id", c.weekID).Msg("batch committed")
	c.reset()
	return nil
}

// Discard abandons the session from any state.
func (c *Curator) Discard() { c.reset() }

func (c *Curator) reset() {
	c.state = StateIdle
	c.weekID = ""
	c.candidates = nil
	c.selected = make(map[int]struct{})
}
