package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"remaudio-service/internal/models"
	"remaudio-service/internal/services"
)

type PlaylistHandler struct {
	playlistService *services.PlaylistService
}

func NewPlaylistHandler(playlistService *services.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService}
}

// CreatePlaylist godoc
// @Summary Create a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreatePlaylistRequest true "Playlist data"
// @Success 201 {object} models.PlaylistResponse
// @Failure 400 {object} models.ErrorResponse "Bad request"
// @Router /playlists [post]
func (h *PlaylistHandler) CreatePlaylist(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
			Details: err.Error(),
		})
		return
	}

	playlist, err := h.playlistService.Create(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create playlist",
		})
		return
	}

	c.JSON(http.StatusCreated, playlist)
}

// ListPlaylists godoc
// @Summary List the user's playlists
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PlaylistResponse
// @Router /playlists [get]
func (h *PlaylistHandler) ListPlaylists(c *gin.Context) {
	userID := c.GetUint("user_id")

	playlists, err := h.playlistService.ListUserPlaylists(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list playlists",
		})
		return
	}

	c.JSON(http.StatusOK, playlists)
}

// GetPlaylist godoc
// @Summary Get a playlist with its songs
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Success 200 {object} models.PlaylistResponse
// @Failure 404 {object} models.ErrorResponse "Playlist not found"
// @Router /playlists/{id} [get]
func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	playlist, err := h.playlistService.GetPlaylist(id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "Playlist not found",
		})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// UpdatePlaylist godoc
// @Summary Rename a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Param request body models.UpdatePlaylistRequest true "New playlist name"
// @Success 200 {object} models.PlaylistResponse
// @Failure 403 {object} models.ErrorResponse "Not the playlist owner"
// @Failure 404 {object} models.ErrorResponse "Playlist not found"
// @Router /playlists/{id} [patch]
func (h *PlaylistHandler) UpdatePlaylist(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
			Details: err.Error(),
		})
		return
	}

	playlist, err := h.playlistService.Update(userID, id, &req)
	if err != nil {
		respondPlaylistError(c, err)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// DeletePlaylist godoc
// @Summary Delete a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Success 204 "Deleted"
// @Failure 403 {object} models.ErrorResponse "Not the playlist owner"
// @Failure 404 {object} models.ErrorResponse "Playlist not found"
// @Router /playlists/{id} [delete]
func (h *PlaylistHandler) DeletePlaylist(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.playlistService.Delete(userID, id); err != nil {
		respondPlaylistError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddSongs godoc
// @Summary Add songs to a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Param request body models.AddSongsRequest true "Song IDs to add"
// @Success 200 {object} models.PlaylistResponse
// @Failure 403 {object} models.ErrorResponse "Not the playlist owner"
// @Failure 404 {object} models.ErrorResponse "Playlist or song not found"
// @Router /playlists/{id}/songs [post]
func (h *PlaylistHandler) AddSongs(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.AddSongsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
			Details: err.Error(),
		})
		return
	}

	playlist, err := h.playlistService.AddSongs(userID, id, &req)
	if err != nil {
		respondPlaylistError(c, err)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// RemoveSong godoc
// @Summary Remove a song from a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Param songId path int true "Song ID"
// @Success 200 {object} models.PlaylistResponse
// @Failure 403 {object} models.ErrorResponse "Not the playlist owner"
// @Failure 404 {object} models.ErrorResponse "Playlist not found"
// @Router /playlists/{id}/songs/{songId} [delete]
func (h *PlaylistHandler) RemoveSong(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	songID, err := strconv.ParseUint(c.Param("songId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "invalid songId parameter",
		})
		return
	}

	playlist, err := h.playlistService.RemoveSong(userID, id, uint(songID))
	if err != nil {
		respondPlaylistError(c, err)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

func respondPlaylistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPlaylistNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "Playlist not found",
		})
	case errors.Is(err, services.ErrSongNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "Song not found",
		})
	case errors.Is(err, services.ErrNotPlaylistOwner):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Code:    http.StatusForbidden,
			Message: "Not the owner of this playlist",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Operation failed",
		})
	}
}
