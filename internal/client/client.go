// Package client is a typed Go client for the quiz REST API. It is consumed
// by the session controller, the admin curator, and the terminal client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/united89/quiz-backend/internal/model"
)

// Failure modes callers branch on.
var (
	ErrServiceUnavailable = errors.New("quiz service unavailable")
	ErrAlreadySubmitted   = errors.New("answers already submitted")
	ErrQuizClosed         = errors.New("quiz is closed")
	ErrPastWeekLocked     = errors.New("past weeks are locked")
	ErrUnauthorized       = errors.New("unauthorized")
)

// APIError carries the server's structured error body for cases the sentinel
// errors do not cover.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the quiz backend. Admin calls require a token set via
// SetToken after AdminLogin.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New builds a Client. httpClient may be nil; tests inject their own
// transport.
func New(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// SetToken stores the admin JWT used for subsequent admin calls.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the stored admin JWT, if any.
func (c *Client) Token() string { return c.token }

// envelope mirrors the server's response shape.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ─── Public endpoints ───────────────────────────────────────────────

// Register creates or resumes a user keyed by phone.
func (c *Client) Register(ctx context.Context, name, phone string) (*model.RegisterResponse, error) {
	var out model.RegisterResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/register",
		model.RegisterRequest{Name: name, Phone: phone}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Questions fetches the current week's answer-stripped question set.
func (c *Client) Questions(ctx context.Context) ([]model.PublicQuestion, error) {
	var out struct {
		Questions []model.PublicQuestion `json:"questions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/questions", nil, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// Config fetches the public quiz configuration.
func (c *Client) Config(ctx context.Context) (*model.QuizConfig, error) {
	var out model.QuizConfig
	if err := c.doJSON(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit sends the final answer set. A repeat submit for the same user fails
// with ErrAlreadySubmitted.
func (c *Client) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
	var out model.SubmitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/submit", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaderboardResult is the public leaderboard endpoint's payload.
type LeaderboardResult struct {
	WeekID            string                   `json:"week_id"`
	LeaderboardActive bool                     `json:"leaderboard_active"`
	Rankings          []model.LeaderboardEntry `json:"rankings"`
}

// Leaderboard fetches a week's ranking; an empty weekID means the server's
// pinned or current week.
func (c *Client) Leaderboard(ctx context.Context, weekID string) (*LeaderboardResult, error) {
	path := "/api/leaderboard"
	if weekID != "" {
		path += "?week_id=" + url.QueryEscape(weekID)
	}
	var out LeaderboardResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Admin endpoints ────────────────────────────────────────────────

// AdminLogin authenticates and stores the returned token on the client.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*model.AdminLoginResponse, error) {
	var out model.AdminLoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/login",
		model.AdminLoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Weeks lists weeks that have questions, current week flagged.
func (c *Client) Weeks(ctx context.Context) ([]model.Week, error) {
	var out struct {
		Weeks []model.Week `json:"weeks"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/weeks", nil, &out); err != nil {
		return nil, err
	}
	return out.Weeks, nil
}

// QuestionsFull lists a week's questions with correct answers.
func (c *Client) QuestionsFull(ctx context.Context, weekID string) ([]model.Question, error) {
	path := "/api/admin/questions"
	if weekID != "" {
		path += "?week_id=" + url.QueryEscape(weekID)
	}
	var out struct {
		Questions []model.Question `json:"questions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// AddQuestion creates a single question.
func (c *Client) AddQuestion(ctx context.Context, req model.AddQuestionRequest) (*model.Question, error) {
	var out model.Question
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/questions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, id, weekID string) error {
	path := "/api/admin/questions/" + url.PathEscape(id)
	if weekID != "" {
		path += "?week_id=" + url.QueryEscape(weekID)
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// BatchAdd commits a curated question batch atomically.
func (c *Client) BatchAdd(ctx context.Context, req model.BatchAddRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/admin/questions/batch", req, nil)
}

// Generate asks for AI question candidates. Past weeks fail with
// ErrPastWeekLocked.
func (c *Client) Generate(ctx context.Context, weekID string) ([]model.GeneratedQuestion, error) {
	path := "/api/admin/generate"
	if weekID != "" {
		path += "?week_id=" + url.QueryEscape(weekID)
	}
	var out struct {
		Questions []model.GeneratedQuestion `json:"questions"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// UpdateConfig saves the quiz configuration.
func (c *Client) UpdateConfig(ctx context.Context, req model.UpdateConfigRequest) (*model.QuizConfig, error) {
	var out model.QuizConfig
	if err := c.doJSON(ctx, http.MethodPut, "/api/admin/config", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmissionDetail is one user's recorded answer sheet.
type SubmissionDetail struct {
	UserID    string            `json:"user_id"`
	Name      string            `json:"name"`
	Score     int               `json:"score"`
	Submitted bool              `json:"submitted"`
	Answers   map[string]string `json:"answers"`
}

// GetSubmissionDetail fetches one user's answers.
func (c *Client) GetSubmissionDetail(ctx context.Context, userID string) (*SubmissionDetail, error) {
	path := "/api/admin/users/" + url.PathEscape(userID) + "/submission"
	var out SubmissionDetail
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Transport ──────────────────────────────────────────────────────

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || env.Error != nil {
		return c.asError(resp.StatusCode, env)
	}

	if responseBody == nil {
		return nil
	}
	return json.Unmarshal(env.Data, responseBody)
}

// asError maps known server error codes onto sentinel errors.
func (c *Client) asError(status int, env envelope) error {
	apiErr := &APIError{StatusCode: status}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}

	switch apiErr.Code {
	case "ALREADY_SUBMITTED":
		return fmt.Errorf("%w: %s", ErrAlreadySubmitted, apiErr.Message)
	case "QUIZ_CLOSED":
		return fmt.Errorf("%w: %s", ErrQuizClosed, apiErr.Message)
	case "PAST_WEEK_LOCKED":
		return fmt.Errorf("%w: %s", ErrPastWeekLocked, apiErr.Message)
	case "TOKEN_REQUIRED", "TOKEN_INVALID", "ADMIN_ACCESS_ONLY", "INVALID_CREDENTIALS":
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	}
	return apiErr
}
