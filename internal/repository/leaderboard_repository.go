package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/united89/quiz-backend/internal/model"
)

// ErrSnapshotNotFound is returned when a week has no persisted ranking yet.
var ErrSnapshotNotFound = errors.New("leaderboard snapshot not found")

// LeaderboardRepository persists frozen weekly rankings.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

// UpsertSnapshot saves (or replaces) a week's ranking.
func (r *LeaderboardRepository) UpsertSnapshot(ctx context.Context, weekID string, rankings []model.LeaderboardEntry) error {
	raw, err := json.Marshal(rankings)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO leaderboard_snapshots (week_id, rankings, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (week_id) DO UPDATE SET rankings = EXCLUDED.rankings, created_at = NOW()`,
		weekID, raw)
	return err
}

// GetSnapshot loads a week's frozen ranking.
func (r *LeaderboardRepository) GetSnapshot(ctx context.Context, weekID string) (*model.LeaderboardSnapshot, error) {
	var (
		snap model.LeaderboardSnapshot
		raw  []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT week_id, rankings, created_at FROM leaderboard_snapshots WHERE week_id = $1`,
		weekID).Scan(&snap.WeekID, &raw, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &snap.Rankings); err != nil {
		return nil, err
	}
	return &snap, nil
}
