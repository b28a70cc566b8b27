package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/database"
	"github.com/united89/quiz-backend/internal/genai"
	"github.com/united89/quiz-backend/internal/handler"
	"github.com/united89/quiz-backend/internal/logger"
	"github.com/united89/quiz-backend/internal/repository"
	"github.com/united89/quiz-backend/internal/router"
	"github.com/united89/quiz-backend/internal/service"
	"github.com/united89/quiz-backend/internal/validator"
	"github.com/united89/quiz-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Quiz Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	configRepo := repository.NewConfigRepository(pool)
	leaderboardRepo := repository.NewLeaderboardRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	adminService := service.NewAdminService(adminRepo)
	leaderboardService := service.NewLeaderboardService(userRepo, leaderboardRepo, rdb, log)
	configService := service.NewConfigService(configRepo, leaderboardService, rdb, log)
	quizService := service.NewQuizService(userRepo, questionRepo, rdb, log)
	questionService := service.NewQuestionService(questionRepo, quizService, log)
	submissionService := service.NewSubmissionService(userRepo, questionRepo, configService, leaderboardService, rdb, log)

	var genaiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		genaiClient = genai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, nil, log)
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, question generation disabled")
	}
	generationService := service.NewGenerationService(genaiClient, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, adminService),
		Quiz:     handler.NewQuizHandler(quizService, configService, submissionService, leaderboardService),
		Admin:    handler.NewAdminHandler(configService, questionService, submissionService, leaderboardService, generationService),
		Question: handler.NewQuestionHandler(questionService),
		WS:       handler.NewWSHandler(rdb, leaderboardService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	leaderboardWorker := worker.NewLeaderboardWorker(leaderboardService, rdb, log)
	go leaderboardWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the worker to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
