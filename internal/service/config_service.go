package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/repository"
)

// Config KV keys as stored in the quiz_config table.
const (
	cfgKeyTimerMinutes      = "timer_duration_minutes"
	cfgKeyQuizActive        = "quiz_active"
	cfgKeyLeaderboardActive = "leaderboard_active"
	cfgKeyCurrentWeekID     = "current_week_id"
	cfgKeyTesterPhones      = "tester_phones"
)

// configCacheTTL bounds staleness of the public config endpoint.
const configCacheTTL = 15 * time.Second

// ConfigService owns the global quiz configuration document.
type ConfigService struct {
	configRepo  *repository.ConfigRepository
	leaderboard *LeaderboardService
	rdb         *redis.Client
	log         zerolog.Logger
}

func NewConfigService(
	configRepo *repository.ConfigRepository,
	leaderboard *LeaderboardService,
	rdb *redis.Client,
	log zerolog.Logger,
) *ConfigService {
	return &ConfigService{
		configRepo:  configRepo,
		leaderboard: leaderboard,
		rdb:         rdb,
		log:         log.With().Str("component", "config_service").Logger(),
	}
}

// Get returns the current quiz configuration, falling back to defaults for
// keys an admin has never saved. Served from a short-TTL Redis cache because
// every page load of every client hits this.
func (s *ConfigService) Get(ctx context.Context) (model.QuizConfig, error) {
	cacheKey := config.CacheKey.QuizConfigKey()

	if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var cached model.QuizConfig
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("config cache read failed")
	}

	kv, err := s.configRepo.GetAll(ctx)
	if err != nil {
		return model.QuizConfig{}, fmt.Errorf("load config: %w", err)
	}

	cfg := fromKV(kv)

	if raw, err := json.Marshal(cfg); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, raw, configCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("config cache write failed")
		}
	}

	return cfg, nil
}

// Update persists a new configuration. Enabling the leaderboard closes the
// quiz to further submissions, pins the current week, and freezes that week's
// ranking as a snapshot — in that order, so the snapshot cannot race new
// submissions.
func (s *ConfigService) Update(ctx context.Context, req model.UpdateConfigRequest) (model.QuizConfig, error) {
	cfg := model.QuizConfig{
		TimerDurationMinutes: req.TimerDurationMinutes,
		QuizActive:           req.QuizActive,
		LeaderboardActive:    req.LeaderboardActive,
		TesterPhones:         req.TesterPhones,
	}
	if cfg.TesterPhones == nil {
		cfg.TesterPhones = []string{}
	}

	if cfg.LeaderboardActive {
		cfg.QuizActive = false
		cfg.CurrentWeekID = model.CurrentWeekID()
	} else {
		// Preserve the previously pinned week so past results stay reachable.
		if existing, err := s.Get(ctx); err == nil {
			cfg.CurrentWeekID = existing.CurrentWeekID
		}
	}

	for key, value := range toKV(cfg) {
		if err := s.configRepo.Upsert(ctx, key, value); err != nil {
			return model.QuizConfig{}, fmt.Errorf("save config key %s: %w", key, err)
		}
	}

	if err := s.rdb.Del(ctx, config.CacheKey.QuizConfigKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("config cache invalidation failed")
	}

	if cfg.LeaderboardActive {
		if err := s.leaderboard.FreezeWeek(ctx, cfg.CurrentWeekID); err != nil {
			// The config is saved; a missing snapshot only degrades the
			// leaderboard to live computation.
			s.log.Error().Err(err).Str("week_id", cfg.CurrentWeekID).Msg("leaderboard freeze failed")
		} else {
			s.log.Info().Str("week_id", cfg.CurrentWeekID).Msg("quiz closed, leaderboard snapshot saved")
		}
	}

	return cfg, nil
}

func fromKV(kv map[string]string) model.QuizConfig {
	cfg := model.DefaultQuizConfig()

	if v, ok := kv[cfgKeyTimerMinutes]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimerDurationMinutes = n
		}
	}
	if v, ok := kv[cfgKeyQuizActive]; ok {
		cfg.QuizActive = v == "true"
	}
	if v, ok := kv[cfgKeyLeaderboardActive]; ok {
		cfg.LeaderboardActive = v == "true"
	}
	if v, ok := kv[cfgKeyCurrentWeekID]; ok {
		cfg.CurrentWeekID = v
	}
	if v, ok := kv[cfgKeyTesterPhones]; ok && v != "" {
		cfg.TesterPhones = strings.Split(v, ",")
	}

	return cfg
}

func toKV(cfg model.QuizConfig) map[string]string {
	return map[string]string{
		cfgKeyTimerMinutes:      strconv.Itoa(cfg.TimerDurationMinutes),
		cfgKeyQuizActive:        strconv.FormatBool(cfg.QuizActive),
		cfgKeyLeaderboardActive: strconv.FormatBool(cfg.LeaderboardActive),
		cfgKeyCurrentWeekID:     cfg.CurrentWeekID,
		cfgKeyTesterPhones:      strings.Join(cfg.TesterPhones, ","),
	}
}
