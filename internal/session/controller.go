package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/model"
)

// Entry refusals from the bootstrapper.
var (
	ErrAlreadyPlayed = errors.New("this user has already submitted")
	ErrQuizInactive  = errors.New("the quiz is not currently active")
	ErrNoQuestions   = errors.New("no questions available")
)

// API is the server surface the session controller needs. *client.Client
// satisfies it.
type API interface {
	Questions(ctx context.Context) ([]model.PublicQuestion, error)
	Config(ctx context.Context) (*model.QuizConfig, error)
	Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error)
}

// Options tune a controller; zero values give production behavior.
type Options struct {
	Now       func() time.Time // injectable clock
	Grace     time.Duration    // navigation guard grace window
	OnWarning func()           // 10s-remaining cue
	OnScore   func(score int)  // fired once on successful submission
}

// Controller owns one quiz session: bootstraps questions and config, then
// coordinates the countdown, the answer tracker, the navigation guard, and
// the submission gate.
type Controller struct {
	api   API
	store Store
	opts  Options
	log   zerolog.Logger

	userID string

	tracker    *Tracker
	countdown  *Countdown
	gate       *Gate
	guard      *Guard
	capability *Capability
}

// NewController wires a controller for a registered user.
func NewController(api API, store Store, userID string, opts Options, log zerolog.Logger) *Controller {
	return &Controller{
		api:    api,
		store:  store,
		opts:   opts,
		userID: userID,
		log:    log.With().Str("component", "session_controller").Logger(),
	}
}

// Start bootstraps the session: questions and config are fetched
// concurrently, entry is refused when this user already submitted or the quiz
// is closed, and the timer/guard/gate are armed.
func (c *Controller) Start(ctx context.Context) error {
	if v, ok := c.store.Get(KeyHasSubmitted); ok && v == "true" {
		return ErrAlreadyPlayed
	}

	type questionsResult struct {
		questions []model.PublicQuestion
		err       error
	}
	type configResult struct {
		cfg *model.QuizConfig
		err error
	}

	qCh := make(chan questionsResult, 1)
	cCh := make(chan configResult, 1)
	go func() {
		questions, err := c.api.Questions(ctx)
		qCh <- questionsResult{questions, err}
	}()
	go func() {
		cfg, err := c.api.Config(ctx)
		cCh <- configResult{cfg, err}
	}()

	qr, cr := <-qCh, <-cCh
	if cr.err != nil {
		return cr.err
	}
	if qr.err != nil {
		return qr.err
	}
	if !cr.cfg.QuizActive {
		return ErrQuizInactive
	}
	if len(qr.questions) == 0 {
		return ErrNoQuestions
	}

	duration := cr.cfg.TimerDurationMinutes * 60
	if duration <= 0 {
		duration = 600
	}

	c.tracker = NewTracker(qr.questions)

	c.gate = NewGate(c.userID, c.store, c.api.Submit, c.opts.Now, func(score int) {
		c.countdown.Stop()
		c.capability.Revoke()
		if c.opts.OnScore != nil {
			c.opts.OnScore(score)
		}
	})

	c.countdown = NewCountdown(duration, c.opts.OnWarning, func() {
		// Time expired: force submission of whatever exists. The gate
		// suppresses this if a guard-triggered submit is already in flight.
		if _, err := c.gate.Submit(context.Background(), c.tracker.Answers()); err != nil &&
			!errors.Is(err, ErrAlreadySubmitted) && !errors.Is(err, ErrSubmitInFlight) {
			c.log.Error().Err(err).Msg("expiry submission failed")
		}
	})

	c.guard = NewGuard(c.opts.Grace, c.opts.Now, func() {
		if _, err := c.gate.Submit(context.Background(), c.tracker.Answers()); err != nil &&
			!errors.Is(err, ErrAlreadySubmitted) && !errors.Is(err, ErrSubmitInFlight) {
			c.log.Error().Err(err).Msg("forced-leave submission failed")
		}
	})

	c.log.Info().
		Int("questions", len(qr.questions)).
		Int("duration_seconds", duration).
		Msg("session started")
	return nil
}

// ArmGuard activates the navigation guard with a confirmation callback and
// keeps the capability for revocation on clean submission.
func (c *Controller) ArmGuard(confirm func() bool) {
	c.capability = c.guard.Arm(confirm)
}

// SelectOption records an answer for a question.
func (c *Controller) SelectOption(questionID, option string) {
	c.tracker.SelectOption(questionID, option)
}

// Advance moves to the next question; on the last answered question it
// submits instead.
func (c *Controller) Advance(ctx context.Context) (finished bool, err error) {
	moved, finished := c.tracker.Advance()
	if !finished || moved {
		return false, nil
	}
	_, err = c.gate.Submit(ctx, c.tracker.Answers())
	if errors.Is(err, ErrAlreadySubmitted) || errors.Is(err, ErrSubmitInFlight) {
		err = nil
	}
	return true, err
}

// Retry re-attempts submission after a failure.
func (c *Controller) Retry(ctx context.Context) (int, error) {
	return c.gate.Submit(ctx, c.tracker.Answers())
}

// Tick advances the countdown by one second.
func (c *Controller) Tick() int { return c.countdown.Tick() }

// RunCountdown ticks in real time until expiry, submission, or cancellation.
func (c *Controller) RunCountdown(ctx context.Context) { c.countdown.Run(ctx) }

// RequestLeave is the back-navigation hook; true means leaving may proceed.
func (c *Controller) RequestLeave() bool { return c.guard.RequestLeave() }

// Remaining returns the countdown's remaining seconds.
func (c *Controller) Remaining() int { return c.countdown.Remaining() }

// Submitted reports whether the session reached its terminal state.
func (c *Controller) Submitted() bool { return c.gate.Submitted() }

// Current exposes the question under the cursor.
func (c *Controller) Current() (model.PublicQuestion, bool) { return c.tracker.Current() }

// Index returns the zero-based cursor position.
func (c *Controller) Index() int { return c.tracker.Index() }

// Questions returns how many questions the session has.
func (c *Controller) Questions() int { return len(c.tracker.questions) }

// Answers returns a copy of the current answer map.
func (c *Controller) Answers() map[string]string { return c.tracker.Answers() }
