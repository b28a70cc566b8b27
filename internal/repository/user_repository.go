package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/united89/quiz-backend/internal/model"
)

// UserRepository handles quiz-taker data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user keyed by phone number.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	answers, err := json.Marshal(map[string]string{})
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (id, name, phone, score, answers, time_taken, submitted, created_at)
		 VALUES ($1, $2, $3, 0, $4, 0, FALSE, NOW())`,
		u.ID, u.Name, u.Phone, answers,
	)
	return err
}

// GetByID retrieves a user by ID (phone number).
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, phone, score, answers, time_taken, submitted,
		        COALESCE(week_id, ''), created_at, submitted_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// MarkSubmitted records a scored submission. The WHERE submitted = FALSE guard
// makes the flag monotonic: a second submission affects zero rows.
// Returns false when the user had already submitted.
func (r *UserRepository) MarkSubmitted(ctx context.Context, id string, answers map[string]string, score, timeTaken int, weekID string) (bool, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET answers = $1, score = $2, time_taken = $3, submitted = TRUE,
		     submitted_at = NOW(), week_id = $4
		 WHERE id = $5 AND submitted = FALSE`,
		raw, score, timeTaken, weekID, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListSubmittedByWeek returns all users who submitted in a given week.
func (r *UserRepository) ListSubmittedByWeek(ctx context.Context, weekID string) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, score, answers, time_taken, submitted,
		        COALESCE(week_id, ''), created_at, submitted_at
		 FROM users WHERE submitted = TRUE AND week_id = $1`, weekID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListAll returns every registered user ordered by score descending, then
// completion time ascending. Used by the admin dashboard.
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, score, answers, time_taken, submitted,
		        COALESCE(week_id, ''), created_at, submitted_at
		 FROM users ORDER BY score DESC, time_taken ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u           model.User
		rawAnswers  []byte
		submittedAt *time.Time
	)
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Score, &rawAnswers, &u.TimeTaken,
		&u.Submitted, &u.WeekID, &u.CreatedAt, &submittedAt)
	if err != nil {
		return nil, err
	}
	u.SubmittedAt = submittedAt
	if len(rawAnswers) > 0 {
		if err := json.Unmarshal(rawAnswers, &u.Answers); err != nil {
			return nil, err
		}
	}
	if u.Answers == nil {
		u.Answers = map[string]string{}
	}
	return &u, nil
}

func collectUsers(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]model.User, error) {
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
