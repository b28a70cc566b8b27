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

// AdminHandler handles admin dashboard endpoints beyond question management.
type AdminHandler struct {
	configSvc     *service.ConfigService
	questionSvc   *service.QuestionService
	submissionSvc *service.SubmissionService
	leaderboard   *service.LeaderboardService
	generationSvc *service.GenerationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	configSvc *service.ConfigService,
	questionSvc *service.QuestionService,
	submissionSvc *service.SubmissionService,
	leaderboard *service.LeaderboardService,
	generationSvc *service.GenerationService,
) *AdminHandler {
	return &AdminHandler{
		configSvc:     configSvc,
		questionSvc:   questionSvc,
		submissionSvc: submissionSvc,
		leaderboard:   leaderboard,
		generationSvc: generationSvc,
	}
}

// ListWeeks godoc
// GET /api/admin/weeks
// Returns every week that has questions, current week flagged.
func (h *AdminHandler) ListWeeks(c *gin.Context) {
	weeks, err := h.questionSvc.Weeks(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"weeks": weeks})
}

// ListUsers godoc
// GET /api/admin/users
// Returns all registered users ordered by score and completion time.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.leaderboard.ListAllUsers(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// GetSubmissionDetail godoc
// GET /api/admin/users/:id/submission
// Returns one user's recorded answer sheet.
func (h *AdminHandler) GetSubmissionDetail(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	user, err := h.submissionSvc.Detail(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user_id":   user.ID,
		"name":      user.Name,
		"score":     user.Score,
		"submitted": user.Submitted,
		"answers":   user.Answers,
	})
}

// UpdateConfig godoc
// PUT /api/admin/config
// Saves the quiz configuration. Enabling the leaderboard closes the quiz and
// freezes the current week's ranking.
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	var req model.UpdateConfigRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cfg, err := h.configSvc.Update(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, cfg)
}

// Generate godoc
// POST /api/admin/generate?week_id=
// Asks the AI for a candidate question batch. Past weeks are locked.
func (h *AdminHandler) Generate(c *gin.Context) {
	weekID := c.Query("week_id")

	candidates, err := h.generationSvc.Generate(c.Request.Context(), weekID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPastWeekLocked):
			response.Fail(c, http.StatusForbidden, response.ErrPastWeekLocked)
		case errors.Is(err, service.ErrGenerateDisabled):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrGenerateDisabled)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": candidates})
}
