package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/response"
	"github.com/united89/quiz-backend/internal/service"
	"github.com/united89/quiz-backend/internal/validator"
)

// QuizHandler handles the public quiz-taker endpoints.
type QuizHandler struct {
	quizSvc       *service.QuizService
	configSvc     *service.ConfigService
	submissionSvc *service.SubmissionService
	leaderboard   *service.LeaderboardService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	quizSvc *service.QuizService,
	configSvc *service.ConfigService,
	submissionSvc *service.SubmissionService,
	leaderboard *service.LeaderboardService,
) *QuizHandler {
	return &QuizHandler{
		quizSvc:       quizSvc,
		configSvc:     configSvc,
		submissionSvc: submissionSvc,
		leaderboard:   leaderboard,
	}
}

// Register godoc
// POST /api/register
// Registers a quiz taker keyed by phone. Re-registering an existing phone
// returns its submission state instead of failing.
func (h *QuizHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.quizSvc.Register(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// GetQuestions godoc
// GET /api/questions
// Returns the current week's questions with correct answers stripped.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	questions, err := h.quizSvc.PublicQuestions(c.Request.Context(), model.CurrentWeekID())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if len(questions) == 0 {
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetConfig godoc
// GET /api/config
// Returns the public quiz configuration. Tester phones stay server-side.
func (h *QuizHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configSvc.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"timer_duration_minutes": cfg.TimerDurationMinutes,
		"quiz_active":            cfg.QuizActive,
		"leaderboard_active":     cfg.LeaderboardActive,
		"current_week_id":        cfg.CurrentWeekID,
	})
}

// Submit godoc
// POST /api/submit
// Scores and records a final answer set. A second submit for the same user
// returns 409 ALREADY_SUBMITTED.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	score, err := h.submissionSvc.Submit(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadySubmitted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
		case errors.Is(err, service.ErrQuizClosed):
			response.Fail(c, http.StatusForbidden, response.ErrQuizClosed)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, model.SubmitResponse{Score: score})
}

// GetLeaderboard godoc
// GET /api/leaderboard?week_id=
// Returns a week's ranking, defaulting to the pinned or current week.
func (h *QuizHandler) GetLeaderboard(c *gin.Context) {
	cfg, err := h.configSvc.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	weekID := c.Query("week_id")
	if weekID == "" {
		weekID = cfg.CurrentWeekID
		if weekID == "" {
			weekID = model.CurrentWeekID()
		}
	}

	entries, err := h.leaderboard.GetPublic(c.Request.Context(), weekID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"week_id":            weekID,
		"leaderboard_active": cfg.LeaderboardActive,
		"rankings":           entries,
	})
}
