package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AdminSessionKey returns the cache key for an admin's login session.
func (r *CacheKeyStruct) AdminSessionKey(adminID int) string {
	return fmt.Sprintf("admin:login:%d", adminID)
}

// PublicQuestionsKey returns the cache key for the answer-stripped question set
// of a week, as served to quiz takers.
func (r *CacheKeyStruct) PublicQuestionsKey(weekID string) string {
	return fmt.Sprintf("week:%s:questions:public", weekID)
}

// QuizConfigKey returns the cache key for the public quiz configuration document.
func (r *CacheKeyStruct) QuizConfigKey() string {
	return "config:quiz_settings"
}

// LeaderboardSnapshotKey returns the cache key for a week's frozen ranking.
func (r *CacheKeyStruct) LeaderboardSnapshotKey(weekID string) string {
	return fmt.Sprintf("week:%s:leaderboard:snapshot", weekID)
}

// LeaderboardLiveKey returns the cache key for the short-TTL live ranking of a week.
func (r *CacheKeyStruct) LeaderboardLiveKey(weekID string) string {
	return fmt.Sprintf("week:%s:leaderboard:live", weekID)
}

// SubmissionChannel returns the Redis PubSub channel carrying submission events
// for WebSocket fanout.
func (r *CacheKeyStruct) SubmissionChannel() string {
	return "submissions:events"
}

var CacheKey = NewCacheKeyStruct()
