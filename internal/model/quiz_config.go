package model

// QuizConfig is the global quiz configuration document. It is read fresh by
// clients on every page load and mutated only through the admin endpoint.
type QuizConfig struct {
	TimerDurationMinutes int      `json:"timer_duration_minutes"`
	QuizActive           bool     `json:"quiz_active"`
	LeaderboardActive    bool     `json:"leaderboard_active"`
	CurrentWeekID        string   `json:"current_week_id,omitempty"`
	TesterPhones         []string `json:"tester_phones"`
}

// DefaultQuizConfig returns the configuration served before an admin has
// ever saved one.
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		TimerDurationMinutes: 10,
		QuizActive:           true,
		LeaderboardActive:    false,
		TesterPhones:         []string{},
	}
}

// IsTesterPhone reports whether a phone is on the allow-list that may submit
// while the quiz is closed.
func (c QuizConfig) IsTesterPhone(phone string) bool {
	for _, p := range c.TesterPhones {
		if p == phone {
			return true
		}
	}
	return false
}

// UpdateConfigRequest is the payload for the admin config update.
type UpdateConfigRequest struct {
	TimerDurationMinutes int      `json:"timer_duration_minutes" binding:"required,min=1,max=120"`
	QuizActive           bool     `json:"quiz_active"`
	LeaderboardActive    bool     `json:"leaderboard_active"`
	TesterPhones         []string `json:"tester_phones" binding:"omitempty,dive,len=10,numeric"`
}
