package model

import (
	"testing"
	"time"
)

func TestWeekIDAt(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), "2026-W35"},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		// Jan 1 2027 falls in ISO week 53 of 2026.
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
	}
	for _, c := range cases {
		if got := WeekIDAt(c.at); got != c.want {
			t.Fatalf("WeekIDAt(%s) = %q, want %q", c.at.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestQuestionPublicStripsAnswer(t *testing.T) {
	q := Question{
		ID:            "q1",
		Text:          "Capital of France?",
		Options:       []string{"Paris", "Lyon", "Nice", "Lille"},
		CorrectAnswer: "Paris",
		OrderNum:      3,
	}

	pub := q.Public()
	if pub.ID != q.ID || pub.Text != q.Text || pub.OrderNum != 3 {
		t.Fatalf("public view lost fields: %+v", pub)
	}
	if len(pub.Options) != 4 {
		t.Fatalf("options = %v", pub.Options)
	}
}

func TestQuestionHasAnswer(t *testing.T) {
	q := Question{
		Options:       []string{"Paris", "Lyon"},
		CorrectAnswer: "Paris",
	}
	if !q.HasAnswer() {
		t.Fatal("answer among options must pass")
	}
	q.CorrectAnswer = "Berlin"
	if q.HasAnswer() {
		t.Fatal("answer outside options must fail")
	}
}
