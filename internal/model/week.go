package model

import (
	"fmt"
	"time"
)

// Week is an administrative grouping unit for questions and leaderboards.
type Week struct {
	WeekID    string `json:"week_id"`
	IsCurrent bool   `json:"is_current"`
}

// WeekIDAt returns the ISO week identifier for a point in time,
// e.g. "2026-W35".
func WeekIDAt(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// CurrentWeekID returns the ISO week identifier for now.
func CurrentWeekID() string {
	return WeekIDAt(time.Now())
}
