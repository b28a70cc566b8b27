package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/service"
)

const (
	SubmissionBatchSize    = 50
	SubmissionBatchTimeout = 2 * time.Second
	SubmissionPollTimeout  = 1 * time.Second
)

// LeaderboardWorker drains submission events from the Redis queue, recomputes
// the affected weeks' rankings in batches, and publishes updates for live
// admin streams.
type LeaderboardWorker struct {
	leaderboard *service.LeaderboardService
	rdb         *redis.Client
	log         zerolog.Logger
}

func NewLeaderboardWorker(leaderboard *service.LeaderboardService, rdb *redis.Client, log zerolog.Logger) *LeaderboardWorker {
	return &LeaderboardWorker{
		leaderboard: leaderboard,
		rdb:         rdb,
		log:         log.With().Str("component", "leaderboard_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *LeaderboardWorker) Start(ctx context.Context) {
	w.log.Info().Msg("LeaderboardWorker started")

	batch := make([]*service.SubmissionEvent, 0, SubmissionBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= SubmissionBatchSize || time.Since(lastFlush) >= SubmissionBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, SubmissionPollTimeout, config.WorkerKey.SubmissionEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev service.SubmissionEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &ev)
		}
	}
}

// ----------------------------------------------------------------
// Batch recompute per affected week
// ----------------------------------------------------------------

func (w *LeaderboardWorker) flushSafe(ctx context.Context, batch []*service.SubmissionEvent) {
	if len(batch) == 0 {
		return
	}

	// Many events in one batch usually hit the same week; recompute each
	// affected week once.
	weeks := make(map[string]struct{}, 1)
	for _, ev := range batch {
		weeks[ev.WeekID] = struct{}{}
	}

	for weekID := range weeks {
		entries, err := w.leaderboard.ComputeWeek(ctx, weekID)
		if err != nil {
			w.log.Error().Err(err).Str("week_id", weekID).Msg("ranking recompute failed")
			continue
		}
		w.publish(ctx, weekID, len(entries))
	}

	w.log.Debug().Int("events", len(batch)).Int("weeks", len(weeks)).Msg("submission batch processed")
}

// publish notifies live subscribers (the admin WebSocket stream) that a
// week's ranking changed.
func (w *LeaderboardWorker) publish(ctx context.Context, weekID string, entryCount int) {
	payload, err := json.Marshal(map[string]interface{}{
		"week_id": weekID,
		"entries": entryCount,
		"at":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := w.rdb.Publish(ctx, config.CacheKey.SubmissionChannel(), payload).Err(); err != nil {
		w.log.Warn().Err(err).Msg("submission channel publish failed")
	}
}
