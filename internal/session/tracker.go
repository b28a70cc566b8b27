package session

import (
	"sync"

	"github.com/united89/quiz-backend/internal/model"
)

// Tracker records one selected option per question and walks the question
// list forward-only.
type Tracker struct {
	mu        sync.Mutex
	questions []model.PublicQuestion
	index     int
	answers   map[string]string
}

// NewTracker builds a tracker over a fixed, ordered question list.
func NewTracker(questions []model.PublicQuestion) *Tracker {
	return &Tracker{
		questions: questions,
		answers:   make(map[string]string),
	}
}

// Current returns the question at the cursor and false when the list is
// exhausted.
func (t *Tracker) Current() (model.PublicQuestion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.index >= len(t.questions) {
		return model.PublicQuestion{}, false
	}
	return t.questions[t.index], true
}

// Index returns the zero-based cursor position.
func (t *Tracker) Index() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

// SelectOption records or overwrites the selection for a question. The option
// string is not validated against the question's declared options; the server
// is the trust boundary for that.
func (t *Tracker) SelectOption(questionID, option string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.answers[questionID] = option
}

// Advance moves the cursor to the next question. It is a no-op (returns
// false, false) when the current question has no recorded answer. On the last
// answered question it does not move and returns finished=true: the caller
// triggers submission instead.
func (t *Tracker) Advance() (moved, finished bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.index >= len(t.questions) {
		return false, true
	}
	current := t.questions[t.index]
	if _, answered := t.answers[current.ID]; !answered {
		return false, false
	}

	if t.index == len(t.questions)-1 {
		return false, true
	}
	t.index++
	return true, false
}

// Answers returns a copy of the answer map.
func (t *Tracker) Answers() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]string, len(t.answers))
	for k, v := range t.answers {
		out[k] = v
	}
	return out
}
