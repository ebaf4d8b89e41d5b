package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"remaudio-service/internal/models"
	"remaudio-service/internal/multiplay"
)

// MultiplayHandler exposes read-only room state over REST.
type MultiplayHandler struct {
	rooms *multiplay.RoomRegistry
	conns *multiplay.ConnectionRegistry
	hub   *multiplay.Hub
}

func NewMultiplayHandler(rooms *multiplay.RoomRegistry, conns *multiplay.ConnectionRegistry, hub *multiplay.Hub) *MultiplayHandler {
	return &MultiplayHandler{
		rooms: rooms,
		conns: conns,
		hub:   hub,
	}
}

// GetRoom godoc
// @Summary Get room status
// @Description Return the current state of a playback room
// @Tags multiplay
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} multiplay.RoomSnapshot
// @Failure 404 {object} models.ErrorResponse "Room not found"
// @Router /multiplay/rooms/{id} [get]
func (h *MultiplayHandler) GetRoom(c *gin.Context) {
	info, ok := h.rooms.RoomInfo(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "Room not found",
		})
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetStats godoc
// @Summary Relay statistics
// @Description Return connection and room counters for the relay
// @Tags multiplay
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /multiplay/stats [get]
func (h *MultiplayHandler) GetStats(c *gin.Context) {
	rooms, members := h.rooms.Stats()

	c.JSON(http.StatusOK, gin.H{
		"rooms":       rooms,
		"members":     members,
		"connections": h.hub.ClientCount(),
		"tracked":     h.conns.Count(),
	})
}
