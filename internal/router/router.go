package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/handler"
	"github.com/united89/quiz-backend/internal/middleware"
	"github.com/united89/quiz-backend/internal/response"
	"github.com/united89/quiz-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Quiz     *handler.QuizHandler
	Admin    *handler.AdminHandler
	Question *handler.QuestionHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for registration and submission (30 requests per minute per IP).
	publicLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Public quiz group ──────────────────────────────────────────
	publicAPI := router.Group("/api")
	{
		publicAPI.POST("/register", publicLimiter.Middleware(), handlers.Quiz.Register)
		// The question set is identical for every player within a week,
		// so a short browser cache takes load off the hot path.
		publicAPI.GET("/questions", middleware.CacheControl(60), handlers.Quiz.GetQuestions)
		publicAPI.GET("/config", handlers.Quiz.GetConfig)
		publicAPI.POST("/submit", publicLimiter.Middleware(), handlers.Quiz.Submit)
		publicAPI.GET("/leaderboard", middleware.CacheControl(60), handlers.Quiz.GetLeaderboard)
	}

	// Rate limiter for admin login (10 attempts per minute per IP).
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 2. Admin group (JWT + session registry) ───────────────────────
	adminAPI := router.Group("/api/admin")
	{
		adminAPI.POST("/login", loginLimiter.Middleware(), handlers.Auth.AdminLogin)

		authed := adminAPI.Group("")
		authed.Use(
			middleware.RequireAdminJWT(authService),
			middleware.CheckAdminSession(authService),
		)
		{
			authed.GET("/me", handlers.Auth.GetAdminProfile)
			authed.POST("/logout", handlers.Auth.AdminLogout)

			authed.GET("/weeks", handlers.Admin.ListWeeks)
			authed.GET("/users", handlers.Admin.ListUsers)
			authed.GET("/users/:id/submission", handlers.Admin.GetSubmissionDetail)
			authed.PUT("/config", handlers.Admin.UpdateConfig)
			authed.POST("/generate", handlers.Admin.Generate)

			authed.GET("/questions", handlers.Question.ListFull)
			authed.POST("/questions", handlers.Question.Add)
			authed.POST("/questions/batch", handlers.Question.BatchAdd)
			authed.DELETE("/questions/:id", handlers.Question.Delete)
		}
	}

	// ─── 3. WebSocket group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/leaderboard", handlers.WS.LeaderboardStream)
	}

	return router
}
