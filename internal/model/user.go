package model

import "time"

// User represents a registered quiz taker. The phone number doubles as the
// user ID, matching the registration contract.
type User struct {
	ID          string            `json:"user_id"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone"`
	Score       int               `json:"score"`
	Answers     map[string]string `json:"answers"`
	TimeTaken   int               `json:"time_taken"`
	Submitted   bool              `json:"submitted"`
	WeekID      string            `json:"week_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
}

// RegisterRequest is the payload for quiz registration.
type RegisterRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Phone string `json:"phone" binding:"required,len=10,numeric"`
}

// RegisterResponse tells the client whether this phone already played.
type RegisterResponse struct {
	UserID       string `json:"user_id"`
	HasSubmitted bool   `json:"has_submitted"`
	Resuming     bool   `json:"resuming"`
}

// SubmitRequest carries the final answer set for one session.
type SubmitRequest struct {
	UserID    string            `json:"user_id" binding:"required"`
	Answers   map[string]string `json:"answers" binding:"required"`
	TimeTaken int               `json:"time_taken" binding:"min=0"`
}

// SubmitResponse acknowledges a scored submission.
type SubmitResponse struct {
	Score int `json:"score"`
}
