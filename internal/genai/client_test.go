package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/model"
)

// roundTripFunc lets tests stand in for the Gemini API.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func generateContentBody(t *testing.T, sets []model.GeneratedQuestion) string {
	t.Helper()
	inner, err := json.Marshal(map[string]any{"question_sets": sets})
	if err != nil {
		t.Fatal(err)
	}
	outer, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": string(inner)}}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(outer)
}

func testClient(rt roundTripFunc) *Client {
	return NewClient("test-key", "gemini-2.0-flash", "https://example.test", &http.Client{Transport: rt}, zerolog.Nop())
}

func TestGenerateQuestionsParsesBatch(t *testing.T) {
	sets := []model.GeneratedQuestion{
		{Question: "Capital of France?", Choices: []string{"Paris", "Lyon", "Nice", "Lille"}, CorrectAnswer: "a"},
		{Question: "Red planet?", Choices: []string{"Venus", "Mars", "Pluto", "Io"}, CorrectAnswer: "b"},
	}

	var gotURL, gotKey string
	c := testClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		gotKey = req.Header.Get("x-goog-api-key")
		return jsonResponse(http.StatusOK, generateContentBody(t, sets)), nil
	})

	got, err := c.GenerateQuestions(context.Background())
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
	if got[1].CorrectAnswer != "b" {
		t.Fatalf("answer = %q, want b", got[1].CorrectAnswer)
	}
	if gotURL != "https://example.test/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("unexpected URL %s", gotURL)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
}

func TestGenerateQuestionsDropsInvalidCandidates(t *testing.T) {
	sets := []model.GeneratedQuestion{
		{Question: "Valid?", Choices: []string{"A", "B", "C", "D"}, CorrectAnswer: "c"},
		{Question: "", Choices: []string{"A", "B", "C", "D"}, CorrectAnswer: "a"},
		{Question: "Three choices", Choices: []string{"A", "B", "C"}, CorrectAnswer: "a"},
		{Question: "Bad letter", Choices: []string{"A", "B", "C", "D"}, CorrectAnswer: "x"},
	}

	c := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, generateContentBody(t, sets)), nil
	})

	got, err := c.GenerateQuestions(context.Background())
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(got) != 1 || got[0].Question != "Valid?" {
		t.Fatalf("survivors = %+v, want only the valid question", got)
	}
}

func TestGenerateQuestionsEmptyResponse(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
	})

	if _, err := c.GenerateQuestions(context.Background()); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateQuestionsNon200(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"quota"}}`), nil
	})

	if _, err := c.GenerateQuestions(context.Background()); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestAnswerIndex(t *testing.T) {
	for letter, want := range map[string]int{"a": 0, "b": 1, "c": 2, "d": 3} {
		got, err := AnswerIndex(letter)
		if err != nil {
			t.Fatalf("AnswerIndex(%q): %v", letter, err)
		}
		if got != want {
			t.Fatalf("AnswerIndex(%q) = %d, want %d", letter, got, want)
		}
	}
	for _, bad := range []string{"", "e", "A", "ab"} {
		if _, err := AnswerIndex(bad); !errors.Is(err, ErrBadCandidate) {
			t.Fatalf("AnswerIndex(%q) = %v, want ErrBadCandidate", bad, err)
		}
	}
}

func TestAnswerText(t *testing.T) {
	q := model.GeneratedQuestion{
		Question:      "Pick",
		Choices:       []string{"W", "X", "Y", "Z"},
		CorrectAnswer: "d",
	}
	got, err := AnswerText(q)
	if err != nil {
		t.Fatalf("AnswerText: %v", err)
	}
	if got != "Z" {
		t.Fatalf("AnswerText = %q, want Z", got)
	}
}
