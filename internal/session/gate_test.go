package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/united89/quiz-backend/internal/model"
)

// fakeClock is an injectable wall clock advanced manually by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGateSubmitsOnce(t *testing.T) {
	var calls int32
	submit := func(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
		atomic.AddInt32(&calls, 1)
		return &model.SubmitResponse{Score: 7}, nil
	}

	store := NewMemoryStore()
	scored := 0
	g := NewGate("0812345678", store, submit, nil, func(score int) { scored = score })

	score, err := g.Submit(context.Background(), map[string]string{"q1": "X"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if score != 7 || scored != 7 {
		t.Fatalf("score = %d, callback saw %d, want 7", score, scored)
	}

	if _, err := g.Submit(context.Background(), nil); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit error = %v, want ErrAlreadySubmitted", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("server saw %d submissions, want 1", n)
	}
	if v, ok := store.Get(KeyHasSubmitted); !ok || v != "true" {
		t.Fatalf("submitted flag not persisted: %q %v", v, ok)
	}
}

func TestGateSuppressesConcurrentAttempt(t *testing.T) {
	// Models the timer expiring while a confirmed back-navigation submit is
	// still on the wire: the second caller must be rejected without a second
	// request reaching the server.
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	submit := func(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return &model.SubmitResponse{Score: 3}, nil
	}

	g := NewGate("0812345678", NewMemoryStore(), submit, nil, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := g.Submit(context.Background(), map[string]string{"q1": "X"})
		firstErr <- err
	}()

	<-entered
	if _, err := g.Submit(context.Background(), map[string]string{"q1": "X"}); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("concurrent submit error = %v, want ErrSubmitInFlight", err)
	}
	close(release)

	if err := <-firstErr; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("server saw %d submissions, want 1", n)
	}
}

func TestGateFailureAllowsRetry(t *testing.T) {
	var calls int32
	submit := func(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("connection reset")
		}
		return &model.SubmitResponse{Score: 5}, nil
	}

	g := NewGate("0812345678", NewMemoryStore(), submit, nil, nil)

	if _, err := g.Submit(context.Background(), nil); err == nil {
		t.Fatal("expected first submit to fail")
	}
	if g.Submitted() {
		t.Fatal("failed submit must not mark the session submitted")
	}

	score, err := g.Submit(context.Background(), nil)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if score != 5 {
		t.Fatalf("retry score = %d, want 5", score)
	}
}

func TestGateElapsedIsWallClock(t *testing.T) {
	clock := newFakeClock()
	var got model.SubmitRequest
	submit := func(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
		got = req
		return &model.SubmitResponse{}, nil
	}

	g := NewGate("0812345678", NewMemoryStore(), submit, clock.Now, nil)

	clock.Advance(137 * time.Second)
	if _, err := g.Submit(context.Background(), nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got.TimeTaken != 137 {
		t.Fatalf("time_taken = %d, want 137", got.TimeTaken)
	}
	if got.UserID != "0812345678" {
		t.Fatalf("user_id = %q", got.UserID)
	}
}
