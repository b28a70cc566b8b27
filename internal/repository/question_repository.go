package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/united89/quiz-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByWeek retrieves all questions for a week, ordered by order_num.
func (r *QuestionRepository) ListByWeek(ctx context.Context, weekID string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, text, options, correct_answer, order_num, week_id
		 FROM questions WHERE week_id = $1
		 ORDER BY order_num`, weekID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO questions (id, text, options, correct_answer, order_num, week_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		q.ID, q.Text, options, q.CorrectAnswer, q.OrderNum, q.WeekID,
	)
	return err
}

// CreateBatch inserts a curated batch of questions in a single transaction.
// Either every question lands or none does — a half-committed batch would
// leave the week with a partial question set.
func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, q := range questions {
			options, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO questions (id, text, options, correct_answer, order_num, week_id)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				q.ID, q.Text, options, q.CorrectAnswer, q.OrderNum, q.WeekID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a question by ID. Returns false when no row matched.
func (r *QuestionRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DistinctWeeks returns every week that has questions, newest first.
func (r *QuestionRepository) DistinctWeeks(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT week_id FROM questions ORDER BY week_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var (
			q          model.Question
			rawOptions []byte
		)
		if err := rows.Scan(&q.ID, &q.Text, &rawOptions, &q.CorrectAnswer, &q.OrderNum, &q.WeekID); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
