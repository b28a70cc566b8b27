package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/model"
)

type fakeAPI struct {
	mu        sync.Mutex
	questions []model.PublicQuestion
	cfg       model.QuizConfig
	submitErr error
	score     int
	submits   []model.SubmitRequest
}

func newFakeAPI(n int) *fakeAPI {
	return &fakeAPI{
		questions: testQuestions(n),
		cfg:       model.QuizConfig{QuizActive: true, TimerDurationMinutes: 10},
		score:     n,
	}
}

func (f *fakeAPI) Questions(ctx context.Context) ([]model.PublicQuestion, error) {
	return f.questions, nil
}

func (f *fakeAPI) Config(ctx context.Context) (*model.QuizConfig, error) {
	cfg := f.cfg
	return &cfg, nil
}

func (f *fakeAPI) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submits = append(f.submits, req)
	return &model.SubmitResponse{Score: f.score}, nil
}

func (f *fakeAPI) submissions() []model.SubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.SubmitRequest, len(f.submits))
	copy(out, f.submits)
	return out
}

func newTestController(api *fakeAPI, clock *fakeClock) (*Controller, *MemoryStore) {
	store := NewMemoryStore()
	ctrl := NewController(api, store, "0812345678", Options{
		Now:   clock.Now,
		Grace: time.Second,
	}, zerolog.Nop())
	return ctrl, store
}

func TestControllerRefusesReplay(t *testing.T) {
	api := newFakeAPI(3)
	ctrl, store := newTestController(api, newFakeClock())
	store.Set(KeyHasSubmitted, "true")

	if err := ctrl.Start(context.Background()); !errors.Is(err, ErrAlreadyPlayed) {
		t.Fatalf("Start = %v, want ErrAlreadyPlayed", err)
	}
}

func TestControllerRefusesInactiveQuiz(t *testing.T) {
	api := newFakeAPI(3)
	api.cfg.QuizActive = false
	ctrl, _ := newTestController(api, newFakeClock())

	if err := ctrl.Start(context.Background()); !errors.Is(err, ErrQuizInactive) {
		t.Fatalf("Start = %v, want ErrQuizInactive", err)
	}
}

func TestControllerRefusesEmptyQuestionSet(t *testing.T) {
	api := newFakeAPI(0)
	ctrl, _ := newTestController(api, newFakeClock())

	if err := ctrl.Start(context.Background()); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("Start = %v, want ErrNoQuestions", err)
	}
}

func TestControllerFullRunSubmitsOnLastAdvance(t *testing.T) {
	api := newFakeAPI(3)
	clock := newFakeClock()
	ctrl, store := newTestController(api, clock)

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctrl.ArmGuard(func() bool { return true })

	options := []string{"W", "X", "Y"}
	for i := 0; i < 3; i++ {
		q, ok := ctrl.Current()
		if !ok {
			t.Fatalf("no current question at index %d", i)
		}
		ctrl.SelectOption(q.ID, options[i])
		clock.Advance(10 * time.Second)

		finished, err := ctrl.Advance(context.Background())
		if err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
		if wantFinished := i == 2; finished != wantFinished {
			t.Fatalf("Advance %d: finished=%v, want %v", i, finished, wantFinished)
		}
	}

	submits := api.submissions()
	if len(submits) != 1 {
		t.Fatalf("server saw %d submissions, want 1", len(submits))
	}
	if len(submits[0].Answers) != 3 {
		t.Fatalf("submitted %d answers, want 3", len(submits[0].Answers))
	}
	if submits[0].TimeTaken != 30 {
		t.Fatalf("time_taken = %d, want 30", submits[0].TimeTaken)
	}
	if !ctrl.Submitted() {
		t.Fatal("controller not in terminal state")
	}
	if v, _ := store.Get(KeyHasSubmitted); v != "true" {
		t.Fatal("submitted flag not persisted")
	}
	if !ctrl.RequestLeave() {
		t.Fatal("guard must be revoked after clean submission")
	}
}

func TestControllerExpirySubmitsPartialExactlyOnce(t *testing.T) {
	api := newFakeAPI(3)
	clock := newFakeClock()
	ctrl, _ := newTestController(api, clock)

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	q, _ := ctrl.Current()
	ctrl.SelectOption(q.ID, "W")

	for i := 0; i < 700; i++ {
		clock.Advance(time.Second)
		if remaining := ctrl.Tick(); remaining < 0 {
			t.Fatalf("remaining went negative: %d", remaining)
		}
	}

	submits := api.submissions()
	if len(submits) != 1 {
		t.Fatalf("server saw %d submissions, want 1", len(submits))
	}
	if len(submits[0].Answers) != 1 {
		t.Fatalf("submitted %d answers, want the 1 partial answer", len(submits[0].Answers))
	}
	if submits[0].TimeTaken != 600 {
		t.Fatalf("time_taken = %d, want 600", submits[0].TimeTaken)
	}
	if !ctrl.Submitted() {
		t.Fatal("expiry must leave the session submitted")
	}
}

func TestControllerConfirmedLeaveSubmitsPartial(t *testing.T) {
	api := newFakeAPI(3)
	clock := newFakeClock()
	ctrl, _ := newTestController(api, clock)

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctrl.ArmGuard(func() bool { return true })

	q, _ := ctrl.Current()
	ctrl.SelectOption(q.ID, "W")
	clock.Advance(42 * time.Second)

	if !ctrl.RequestLeave() {
		t.Fatal("confirmed leave must proceed")
	}

	submits := api.submissions()
	if len(submits) != 1 {
		t.Fatalf("server saw %d submissions, want 1", len(submits))
	}
	if len(submits[0].Answers) != 1 {
		t.Fatalf("submitted %d answers, want 1", len(submits[0].Answers))
	}
	if submits[0].TimeTaken != 42 {
		t.Fatalf("time_taken = %d, want 42", submits[0].TimeTaken)
	}

	// Ticks after the forced submission must not produce a second request.
	for i := 0; i < 700; i++ {
		clock.Advance(time.Second)
		ctrl.Tick()
	}
	if len(api.submissions()) != 1 {
		t.Fatal("countdown expiry after forced leave sent a second submission")
	}
}

func TestControllerRetryAfterFailure(t *testing.T) {
	api := newFakeAPI(2)
	api.submitErr = errors.New("connection reset")
	clock := newFakeClock()
	ctrl, _ := newTestController(api, clock)

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 2; i++ {
		q, _ := ctrl.Current()
		ctrl.SelectOption(q.ID, "W")
		if _, err := ctrl.Advance(context.Background()); i == 1 && err == nil {
			t.Fatal("expected the final advance to surface the submit failure")
		}
	}
	if ctrl.Submitted() {
		t.Fatal("failed submission must not be terminal")
	}

	api.mu.Lock()
	api.submitErr = nil
	api.mu.Unlock()

	score, err := ctrl.Retry(context.Background())
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if score != 2 {
		t.Fatalf("score = %d, want 2", score)
	}
	if !ctrl.Submitted() {
		t.Fatal("retry success must be terminal")
	}
}
