package model

import "time"

// LeaderboardEntry is one ranked row of a week's leaderboard. It carries no
// phone numbers or answer sheets — it is safe for the public endpoint.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	TimeTaken int    `json:"time_taken"`
	WeekID    string `json:"week_id,omitempty"`
}

// LeaderboardSnapshot is a week's frozen ranking, persisted when the admin
// reveals the leaderboard.
type LeaderboardSnapshot struct {
	WeekID    string             `json:"week_id"`
	Rankings  []LeaderboardEntry `json:"rankings"`
	CreatedAt time.Time          `json:"created_at"`
}
