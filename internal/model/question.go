package model

// Question represents a single quiz question with its correct answer.
// Only admin endpoints may expose the full struct; quiz takers receive
// PublicQuestion instead.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	OrderNum      int      `json:"order"`
	WeekID        string   `json:"week_id"`
}

// PublicQuestion is the answer-stripped view served to quiz takers.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	OrderNum int      `json:"order"`
}

// Public strips the correct answer from a question.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:       q.ID,
		Text:     q.Text,
		Options:  q.Options,
		OrderNum: q.OrderNum,
	}
}

// HasAnswer reports whether the declared correct answer is one of the options.
func (q Question) HasAnswer() bool {
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// AddQuestionRequest is the payload for adding a single question.
type AddQuestionRequest struct {
	ID      string   `json:"id" binding:"required,max=64"`
	Text    string   `json:"text" binding:"required,min=1,max=2000"`
	Options []string `json:"options" binding:"required,len=4,dive,required,max=500"`
	Answer  string   `json:"answer" binding:"required,max=500"`
	Order   int      `json:"order" binding:"min=0"`
	WeekID  string   `json:"week_id" binding:"omitempty,max=16"`
}

// BatchAddRequest is the payload for committing a curated question batch.
type BatchAddRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// GeneratedQuestion is one AI-proposed candidate as returned by the
// generation endpoint. The correct answer is a letter designator referring
// to an index of Choices ('a' is index 0).
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
}
