package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/repository"
)

// liveCacheTTL bounds how stale the live-computed leaderboard may be while a
// week is still open.
const liveCacheTTL = 30 * time.Second

// LeaderboardService computes, caches, and freezes weekly rankings.
type LeaderboardService struct {
	userRepo        *repository.UserRepository
	leaderboardRepo *repository.LeaderboardRepository
	rdb             *redis.Client
	log             zerolog.Logger
}

func NewLeaderboardService(
	userRepo *repository.UserRepository,
	leaderboardRepo *repository.LeaderboardRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		userRepo:        userRepo,
		leaderboardRepo: leaderboardRepo,
		rdb:             rdb,
		log:             log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// RankEntries orders submitted users by score descending, completion time
// ascending, and assigns 1-based ranks.
func RankEntries(users []model.User) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		if !u.Submitted {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			Name:      u.Name,
			Score:     u.Score,
			TimeTaken: u.TimeTaken,
			WeekID:    u.WeekID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TimeTaken < entries[j].TimeTaken
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// ComputeWeek ranks every submission of a week from the database.
func (s *LeaderboardService) ComputeWeek(ctx context.Context, weekID string) ([]model.LeaderboardEntry, error) {
	users, err := s.userRepo.ListSubmittedByWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return RankEntries(users), nil
}

// FreezeWeek computes a week's ranking and persists it as the authoritative
// snapshot, in PostgreSQL and in Redis.
func (s *LeaderboardService) FreezeWeek(ctx context.Context, weekID string) error {
	rankings, err := s.ComputeWeek(ctx, weekID)
	if err != nil {
		return err
	}
	if err := s.leaderboardRepo.UpsertSnapshot(ctx, weekID, rankings); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	s.cacheSnapshot(ctx, weekID, rankings)
	return nil
}

// GetPublic returns a week's leaderboard, preferring frozen snapshots over
// live computation: Redis snapshot → PostgreSQL snapshot → live compute with
// a short-TTL cache.
func (s *LeaderboardService) GetPublic(ctx context.Context, weekID string) ([]model.LeaderboardEntry, error) {
	snapKey := config.CacheKey.LeaderboardSnapshotKey(weekID)
	if entries, ok := s.readCached(ctx, snapKey); ok {
		return entries, nil
	}

	snap, err := s.leaderboardRepo.GetSnapshot(ctx, weekID)
	if err == nil {
		s.cacheSnapshot(ctx, weekID, snap.Rankings)
		return snap.Rankings, nil
	}
	if !errors.Is(err, repository.ErrSnapshotNotFound) {
		s.log.Warn().Err(err).Str("week_id", weekID).Msg("snapshot load failed, computing live")
	}

	liveKey := config.CacheKey.LeaderboardLiveKey(weekID)
	if entries, ok := s.readCached(ctx, liveKey); ok {
		return entries, nil
	}

	entries, err := s.ComputeWeek(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(entries); err == nil {
		if err := s.rdb.Set(ctx, liveKey, raw, liveCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("live leaderboard cache write failed")
		}
	}
	return entries, nil
}

// InvalidateLive drops the live cache for a week so the next read reflects a
// fresh submission.
func (s *LeaderboardService) InvalidateLive(ctx context.Context, weekID string) {
	if err := s.rdb.Del(ctx, config.CacheKey.LeaderboardLiveKey(weekID)).Err(); err != nil {
		s.log.Warn().Err(err).Str("week_id", weekID).Msg("live cache invalidation failed")
	}
}

// ListAllUsers returns every registered user for the admin dashboard,
// already ordered by score and time.
func (s *LeaderboardService) ListAllUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListAll(ctx)
}

func (s *LeaderboardService) cacheSnapshot(ctx context.Context, weekID string, rankings []model.LeaderboardEntry) {
	raw, err := json.Marshal(rankings)
	if err != nil {
		return
	}
	// Snapshots are immutable once frozen; no TTL.
	if err := s.rdb.Set(ctx, config.CacheKey.LeaderboardSnapshotKey(weekID), raw, 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("snapshot cache write failed")
	}
}

func (s *LeaderboardService) readCached(ctx context.Context, key string) ([]model.LeaderboardEntry, bool) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("leaderboard cache read failed")
		}
		return nil, false
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}
