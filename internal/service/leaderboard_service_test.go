package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/model"
)

func TestRankEntriesOrdersScoreThenTime(t *testing.T) {
	users := []model.User{
		{ID: "1", Name: "Slow Perfect", Score: 10, TimeTaken: 540, Submitted: true},
		{ID: "2", Name: "Fast Perfect", Score: 10, TimeTaken: 120, Submitted: true},
		{ID: "3", Name: "Middling", Score: 7, TimeTaken: 60, Submitted: true},
		{ID: "4", Name: "Abandoned", Score: 0, TimeTaken: 0, Submitted: false},
	}

	entries := RankEntries(users)

	if len(entries) != 3 {
		t.Fatalf("ranked %d entries, want 3 (non-submitted excluded)", len(entries))
	}

	wantOrder := []string{"Fast Perfect", "Slow Perfect", "Middling"}
	for i, want := range wantOrder {
		if entries[i].Name != want {
			t.Fatalf("position %d: %s, want %s", i, entries[i].Name, want)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("position %d: rank %d, want %d", i, entries[i].Rank, i+1)
		}
	}
}

func TestRankEntriesEmpty(t *testing.T) {
	if got := RankEntries(nil); len(got) != 0 {
		t.Fatalf("RankEntries(nil) = %v, want empty", got)
	}
	if got := RankEntries([]model.User{{Submitted: false}}); len(got) != 0 {
		t.Fatalf("only non-submitted users: got %v, want empty", got)
	}
}

func TestRankEntriesStableForTies(t *testing.T) {
	users := []model.User{
		{Name: "First In", Score: 5, TimeTaken: 100, Submitted: true},
		{Name: "Second In", Score: 5, TimeTaken: 100, Submitted: true},
	}

	entries := RankEntries(users)
	if entries[0].Name != "First In" || entries[1].Name != "Second In" {
		t.Fatalf("tie order not stable: %s, %s", entries[0].Name, entries[1].Name)
	}
}

func newCacheOnlyLeaderboardService(t *testing.T) (*LeaderboardService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	// Repos stay nil: these tests only walk the redis cache paths.
	return NewLeaderboardService(nil, nil, rdb, zerolog.Nop()), mr
}

func TestGetPublicServesCachedSnapshot(t *testing.T) {
	svc, mr := newCacheOnlyLeaderboardService(t)
	ctx := context.Background()

	rankings := []model.LeaderboardEntry{
		{Rank: 1, Name: "Fast Perfect", Score: 10, TimeTaken: 120, WeekID: "2026-W35"},
		{Rank: 2, Name: "Middling", Score: 7, TimeTaken: 60, WeekID: "2026-W35"},
	}
	svc.cacheSnapshot(ctx, "2026-W35", rankings)

	if !mr.Exists(config.CacheKey.LeaderboardSnapshotKey("2026-W35")) {
		t.Fatal("snapshot key not written to redis")
	}
	if ttl := mr.TTL(config.CacheKey.LeaderboardSnapshotKey("2026-W35")); ttl != 0 {
		t.Fatalf("frozen snapshot has TTL %v, want none", ttl)
	}

	got, err := svc.GetPublic(ctx, "2026-W35")
	if err != nil {
		t.Fatalf("GetPublic: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Fast Perfect" || got[1].Rank != 2 {
		t.Fatalf("cached snapshot = %+v", got)
	}
}

func TestInvalidateLiveDropsKey(t *testing.T) {
	svc, mr := newCacheOnlyLeaderboardService(t)
	ctx := context.Background()

	liveKey := config.CacheKey.LeaderboardLiveKey("2026-W35")
	if err := mr.Set(liveKey, `[{"rank":1,"name":"Stale","score":1,"time_taken":10}]`); err != nil {
		t.Fatal(err)
	}

	svc.InvalidateLive(ctx, "2026-W35")
	if mr.Exists(liveKey) {
		t.Fatal("live key survived invalidation")
	}
}
