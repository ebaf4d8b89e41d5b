package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"remaudio-service/internal/multiplay"
	"remaudio-service/internal/services"
)

type WSHandler struct {
	hub          *multiplay.Hub
	handler      *multiplay.Handler
	redisService *services.RedisService
}

func NewWSHandler(hub *multiplay.Hub, handler *multiplay.Handler, redisService *services.RedisService) *WSHandler {
	return &WSHandler{
		hub:          hub,
		handler:      handler,
		redisService: redisService,
	}
}

// HandleWebSocket godoc
// @Summary WebSocket connection for playback synchronization
// @Description Establish a WebSocket connection for room-based playback relay
// @Tags multiplay
// @Param userId query string false "User ID for presence tracking"
// @Success 101 "Switching Protocols - WebSocket connection established"
// @Failure 400 "Bad request - upgrade failed"
// @Router /multiplay/ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID := c.Query("userId")

	onClose := func() {}
	if userID != "" && h.redisService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := h.redisService.SetUserOnline(ctx, userID); err != nil {
			slog.Warn("Failed to mark user online", "userID", userID, "error", err)
		}
		cancel()

		onClose = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := h.redisService.SetUserOffline(ctx, userID); err != nil {
				slog.Warn("Failed to mark user offline", "userID", userID, "error", err)
			}
		}
	}

	connID, err := multiplay.ServeWS(h.hub, h.handler, c.Writer, c.Request, onClose)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "connID", connID, "userID", userID)
}
