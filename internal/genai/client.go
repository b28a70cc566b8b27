package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/model"
)

// Generation failure modes distinguished for callers.
var (
	ErrEmptyResponse = errors.New("genai: model returned no candidates")
	ErrBadCandidate  = errors.New("genai: candidate question failed validation")
)

const defaultTimeout = 60 * time.Second

// Client calls the Gemini generateContent REST API to produce quiz question
// candidates.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// NewClient builds a Gemini client. httpc may be nil, in which case a client
// with a 60s timeout is used; tests inject their own transport.
func NewClient(apiKey, geminiModel, baseURL string, httpc *http.Client, log zerolog.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  apiKey,
		model:   geminiModel,
		baseURL: baseURL,
		httpc:   httpc,
		log:     log.With().Str("component", "genai_client").Logger(),
	}
}

// Wire types for the generateContent request and response. Only the fields
// this client reads or writes are declared.
type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type questionSets struct {
	QuestionSets []model.GeneratedQuestion `json:"question_sets"`
}

// GenerateQuestions asks the model for a candidate batch and returns every
// candidate that passes structural validation. Invalid candidates are dropped
// rather than failing the batch; the admin curates from what survives.
func (c *Client) GenerateQuestions(ctx context.Context) ([]model.GeneratedQuestion, error) {
	body, err := json.Marshal(generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: userPrompt}}}},
		GenerationConfig:  generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("genai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	started := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("genai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genai: model returned status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("genai: decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	var sets questionSets
	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), &sets); err != nil {
		return nil, fmt.Errorf("genai: decode question sets: %w", err)
	}

	valid := make([]model.GeneratedQuestion, 0, len(sets.QuestionSets))
	for _, q := range sets.QuestionSets {
		if err := ValidateCandidate(q); err != nil {
			c.log.Warn().Err(err).Str("question", truncateStr(q.Question, 80)).Msg("dropping invalid candidate")
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, ErrEmptyResponse
	}

	c.log.Info().
		Int("candidates", len(sets.QuestionSets)).
		Int("valid", len(valid)).
		Dur("elapsed", time.Since(started)).
		Msg("question batch generated")

	return valid, nil
}

// ValidateCandidate checks a generated question's structure: non-empty text,
// exactly 4 choices, and a letter answer within range.
func ValidateCandidate(q model.GeneratedQuestion) error {
	if q.Question == "" {
		return fmt.Errorf("%w: empty question text", ErrBadCandidate)
	}
	if len(q.Choices) != 4 {
		return fmt.Errorf("%w: expected 4 choices, got %d", ErrBadCandidate, len(q.Choices))
	}
	for _, choice := range q.Choices {
		if choice == "" {
			return fmt.Errorf("%w: empty choice", ErrBadCandidate)
		}
	}
	if _, err := AnswerIndex(q.CorrectAnswer); err != nil {
		return err
	}
	return nil
}

// AnswerIndex maps a letter designator ('a'-'d') to its choices index.
func AnswerIndex(letter string) (int, error) {
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'd' {
		return 0, fmt.Errorf("%w: answer designator %q", ErrBadCandidate, letter)
	}
	return int(letter[0] - 'a'), nil
}

// AnswerText resolves a letter designator to the choice it names.
func AnswerText(q model.GeneratedQuestion) (string, error) {
	idx, err := AnswerIndex(q.CorrectAnswer)
	if err != nil {
		return "", err
	}
	if idx >= len(q.Choices) {
		return "", fmt.Errorf("%w: answer index %d out of range", ErrBadCandidate, idx)
	}
	return q.Choices[idx], nil
}

func truncate(b []byte, n int) string {
	return truncateStr(string(b), n)
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
