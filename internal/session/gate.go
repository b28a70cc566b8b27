package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/united89/quiz-backend/internal/model"
)

// Gate errors. Both mean "no new submission was sent".
var (
	ErrSubmitInFlight   = errors.New("a submission attempt is already in flight")
	ErrAlreadySubmitted = errors.New("session already submitted")
)

// SubmitFunc sends the final answer set to the server.
type SubmitFunc func(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error)

// Gate ensures at most one submission reaches the server per session. The
// in-flight guard suppresses concurrent invocations (timer expiry racing a
// confirmed back-navigation); the persisted submitted flag makes success
// terminal across restarts.
type Gate struct {
	mu        sync.Mutex
	inFlight  bool
	submitted bool

	userID    string
	startedAt time.Time
	now       func() time.Time

	submit SubmitFunc
	store  Store

	// onSubmitted runs once after a successful submission, outside the lock.
	onSubmitted func(score int)
}

// NewGate builds a gate for one session. now may be nil (wall clock). The
// session start moment is captured here; elapsed time is the wall-clock delta
// at submission, not an inference from the countdown's remaining value.
func NewGate(userID string, store Store, submit SubmitFunc, now func() time.Time, onSubmitted func(score int)) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{
		userID:      userID,
		startedAt:   now(),
		now:         now,
		submit:      submit,
		store:       store,
		onSubmitted: onSubmitted,
	}
}

// Submit sends the answer set once. Repeat or concurrent calls are suppressed;
// a failed attempt resets the in-flight guard so a retry is possible.
func (g *Gate) Submit(ctx context.Context, answers map[string]string) (int, error) {
	g.mu.Lock()
	if g.submitted {
		g.mu.Unlock()
		return 0, ErrAlreadySubmitted
	}
	if g.inFlight {
		g.mu.Unlock()
		return 0, ErrSubmitInFlight
	}
	g.inFlight = true
	elapsed := int(g.now().Sub(g.startedAt).Round(time.Second).Seconds())
	g.mu.Unlock()

	resp, err := g.submit(ctx, model.SubmitRequest{
		UserID:    g.userID,
		Answers:   answers,
		TimeTaken: elapsed,
	})

	g.mu.Lock()
	g.inFlight = false
	if err != nil {
		g.mu.Unlock()
		return 0, err
	}
	g.submitted = true
	g.mu.Unlock()

	if g.store != nil {
		_ = g.store.Set(KeyHasSubmitted, "true")
	}
	if g.onSubmitted != nil {
		g.onSubmitted(resp.Score)
	}
	return resp.Score, nil
}

// Submitted reports whether a submission has succeeded.
func (g *Gate) Submitted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitted
}
