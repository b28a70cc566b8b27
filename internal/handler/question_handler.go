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

// QuestionHandler handles admin question management.
type QuestionHandler struct {
	questionSvc *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionSvc *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionSvc: questionSvc}
}

// ListFull godoc
// GET /api/admin/questions?week_id=
// Returns a week's questions with correct answers included.
func (h *QuestionHandler) ListFull(c *gin.Context) {
	weekID := c.Query("week_id")
	if weekID == "" {
		weekID = model.CurrentWeekID()
	}

	questions, err := h.questionSvc.ListFull(c.Request.Context(), weekID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"week_id":   weekID,
		"questions": questions,
	})
}

// Add godoc
// POST /api/admin/questions
// Adds a single question after answer-in-options validation.
func (h *QuestionHandler) Add(c *gin.Context) {
	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionSvc.Add(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerNotOption) {
			response.Fail(c, http.StatusBadRequest, response.ErrBadBatch)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, q)
}

// Delete godoc
// DELETE /api/admin/questions/:id?week_id=
// Removes a question.
func (h *QuestionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	weekID := c.Query("week_id")
	if weekID == "" {
		weekID = model.CurrentWeekID()
	}

	if err := h.questionSvc.Delete(c.Request.Context(), id, weekID); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// BatchAdd godoc
// POST /api/admin/questions/batch
// Commits a curated batch atomically.
func (h *QuestionHandler) BatchAdd(c *gin.Context) {
	var req model.BatchAddRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionSvc.AddBatch(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerNotOption) {
			response.Fail(c, http.StatusBadRequest, response.ErrBadBatch)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"added":   len(questions),
		"week_id": questions[0].WeekID,
	})
}
