package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/united89/quiz-backend/internal/model"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(rt roundTripFunc) *Client {
	return New("http://quiz.test", &http.Client{Transport: rt})
}

func envelopeResponse(status int, data string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(`{"data":` + data + `,"error":null}`)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func errorResponse(status int, code, message string) *http.Response {
	body := `{"data":null,"error":{"code":"` + code + `","message":"` + message + `"}}`
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestSubmitDecodesScore(t *testing.T) {
	var got model.SubmitRequest
	c := testClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/api/submit" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		return envelopeResponse(http.StatusOK, `{"score":4}`), nil
	})

	resp, err := c.Submit(context.Background(), model.SubmitRequest{
		UserID:    "0812345678",
		Answers:   map[string]string{"q1": "Paris"},
		TimeTaken: 93,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Score != 4 {
		t.Fatalf("score = %d, want 4", resp.Score)
	}
	if got.UserID != "0812345678" || got.TimeTaken != 93 {
		t.Fatalf("request body not forwarded: %+v", got)
	}
}

func TestSubmitMapsAlreadySubmitted(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return errorResponse(http.StatusConflict, "ALREADY_SUBMITTED", "answers already submitted"), nil
	})

	_, err := c.Submit(context.Background(), model.SubmitRequest{UserID: "0812345678"})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitMapsQuizClosed(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return errorResponse(http.StatusForbidden, "QUIZ_CLOSED", "quiz is closed"), nil
	})

	_, err := c.Submit(context.Background(), model.SubmitRequest{UserID: "0812345678"})
	if !errors.Is(err, ErrQuizClosed) {
		t.Fatalf("err = %v, want ErrQuizClosed", err)
	}
}

func TestGenerateMapsPastWeekLocked(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return errorResponse(http.StatusForbidden, "PAST_WEEK_LOCKED", "past weeks are locked"), nil
	})

	_, err := c.Generate(context.Background(), "2020-W01")
	if !errors.Is(err, ErrPastWeekLocked) {
		t.Fatalf("err = %v, want ErrPastWeekLocked", err)
	}
}

func TestAdminCallsCarryBearerToken(t *testing.T) {
	calls := 0
	c := testClient(func(req *http.Request) (*http.Response, error) {
		calls++
		switch req.URL.Path {
		case "/api/admin/login":
			return envelopeResponse(http.StatusOK, `{"token":"jwt-abc","admin":{"id":1,"name":"Ops","email":"ops@united89.test"}}`), nil
		case "/api/admin/weeks":
			if got := req.Header.Get("Authorization"); got != "Bearer jwt-abc" {
				t.Fatalf("authorization header = %q", got)
			}
			return envelopeResponse(http.StatusOK, `{"weeks":[{"week_id":"2026-W35","is_current":true}]}`), nil
		default:
			t.Fatalf("unexpected path %s", req.URL.Path)
			return nil, nil
		}
	})

	if _, err := c.AdminLogin(context.Background(), "ops@united89.test", "secret"); err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if c.Token() != "jwt-abc" {
		t.Fatalf("token not stored: %q", c.Token())
	}

	weeks, err := c.Weeks(context.Background())
	if err != nil {
		t.Fatalf("Weeks: %v", err)
	}
	if len(weeks) != 1 || weeks[0].WeekID != "2026-W35" || !weeks[0].IsCurrent {
		t.Fatalf("weeks = %+v", weeks)
	}
	if calls != 2 {
		t.Fatalf("expected 2 requests, saw %d", calls)
	}
}

func TestUnauthorizedMapsSentinel(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return errorResponse(http.StatusUnauthorized, "TOKEN_INVALID", "token expired"), nil
	})

	_, err := c.Weeks(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestUnknownErrorKeepsAPIError(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return errorResponse(http.StatusNotFound, "NO_QUESTIONS", "no questions for this week"), nil
	})

	_, err := c.Questions(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != "NO_QUESTIONS" || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestTransportFailureIsServiceUnavailable(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := c.Config(context.Background())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestLeaderboardWeekQuery(t *testing.T) {
	c := testClient(func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("week_id"); got != "2026-W30" {
			t.Fatalf("week_id query = %q", got)
		}
		return envelopeResponse(http.StatusOK,
			`{"week_id":"2026-W30","leaderboard_active":true,"rankings":[{"rank":1,"user_id":"0812345678","name":"A","score":9,"time_taken":120}]}`), nil
	})

	res, err := c.Leaderboard(context.Background(), "2026-W30")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if !res.LeaderboardActive || len(res.Rankings) != 1 || res.Rankings[0].Rank != 1 {
		t.Fatalf("result = %+v", res)
	}
}
