package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/config"
	"github.com/united89/quiz-backend/internal/middleware"
	"github.com/united89/quiz-backend/internal/model"
	"github.com/united89/quiz-backend/internal/service"
	ws "github.com/united89/quiz-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the live admin leaderboard stream.
type WSHandler struct {
	rdb         *redis.Client
	leaderboard *service.LeaderboardService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, leaderboard *service.LeaderboardService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		leaderboard: leaderboard,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// LeaderboardStream godoc
// WS /ws/admin/leaderboard?token=&week_id=
// Sends the current ranking on connect, then pushes a fresh snapshot whenever
// the worker reports new submissions. Replaces dashboard polling.
func (h *WSHandler) LeaderboardStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	weekID := c.Query("week_id")
	if weekID == "" {
		weekID = model.CurrentWeekID()
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("admin_id", claims.AdminID).
		Str("week_id", weekID).
		Logger()
	wsLog.Info().Msg("Admin connected")

	ctx := c.Request.Context()

	if !h.sendSnapshot(ctx, conn, weekID) {
		return
	}

	sub := h.rdb.Subscribe(ctx, config.CacheKey.SubmissionChannel())
	defer sub.Close()

	// Reader goroutine: handles ping/refresh and detects client close.
	requests := make(chan ws.Action)
	go func() {
		defer close(requests)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			requests <- msg.Action
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case action, ok := <-requests:
			if !ok {
				return
			}
			switch action {
			case ws.ActionPing:
				if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
					return
				}
			case ws.ActionRefresh:
				if !h.sendSnapshot(ctx, conn, weekID) {
					return
				}
			default:
				wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
				_ = ws.WriteError(conn, "unknown action: "+string(action))
			}

		case <-sub.Channel():
			// The payload only signals that rankings changed; recompute and
			// push the authoritative snapshot.
			if !h.sendSnapshot(ctx, conn, weekID) {
				return
			}
		}
	}
}

func (h *WSHandler) sendSnapshot(ctx context.Context, conn *websocket.Conn, weekID string) bool {
	entries, err := h.leaderboard.GetPublic(ctx, weekID)
	if err != nil {
		h.log.Error().Err(err).Str("week_id", weekID).Msg("snapshot load failed")
		_ = ws.WriteError(conn, "leaderboard unavailable")
		return true
	}
	return ws.WriteTyped(conn, ws.SnapshotResponse{
		Event:    ws.EventSnapshot,
		WeekID:   weekID,
		Rankings: entries,
	}) == nil
}
