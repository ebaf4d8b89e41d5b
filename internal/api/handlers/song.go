package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"remaudio-service/internal/models"
	"remaudio-service/internal/services"
)

type SongHandler struct {
	songService *services.SongService
}

func NewSongHandler(songService *services.SongService) *SongHandler {
	return &SongHandler{songService: songService}
}

// Upload godoc
// @Summary Upload a song
// @Description Upload an audio file with optional cover image and metadata
// @Tags songs
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param audio formData file true "Audio file"
// @Param cover formData file false "Cover image"
// @Param name formData string false "Song name, defaults to file name"
// @Param artist formData string false "Artist name"
// @Param duration formData string false "Track duration"
// @Success 201 {object} models.SongResponse
// @Failure 400 {object} models.ErrorResponse "Bad request - missing or invalid file"
// @Failure 413 {object} models.ErrorResponse "File too large"
// @Failure 415 {object} models.ErrorResponse "Unsupported file type"
// @Router /songs [post]
func (h *SongHandler) Upload(c *gin.Context) {
	userID := c.GetUint("user_id")

	audio, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "audio file is required",
		})
		return
	}

	// Cover is optional
	cover, _ := c.FormFile("cover")

	song, err := h.songService.Upload(
		c.Request.Context(),
		userID,
		c.PostForm("name"),
		c.PostForm("artist"),
		c.PostForm("duration"),
		audio,
		cover,
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Code:    http.StatusRequestEntityTooLarge,
				Message: "File exceeds maximum allowed size",
			})
		case errors.Is(err, services.ErrInvalidMimeType):
			c.JSON(http.StatusUnsupportedMediaType, models.ErrorResponse{
				Code:    http.StatusUnsupportedMediaType,
				Message: "Unsupported file type",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "Upload failed",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, song)
}

// ListSongs godoc
// @Summary List the user's songs
// @Description Return all songs uploaded by the authenticated user
// @Tags songs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SongResponse
// @Router /songs [get]
func (h *SongHandler) ListSongs(c *gin.Context) {
	userID := c.GetUint("user_id")

	songs, err := h.songService.ListUserSongs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list songs",
		})
		return
	}

	c.JSON(http.StatusOK, songs)
}

// SearchSongs godoc
// @Summary Search songs
// @Description Search songs by name or artist
// @Tags songs
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query"
// @Success 200 {array} models.SongResponse
// @Failure 400 {object} models.ErrorResponse "Missing q parameter"
// @Router /songs/search [get]
func (h *SongHandler) SearchSongs(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "q parameter is required",
		})
		return
	}

	songs, err := h.songService.Search(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Search failed",
		})
		return
	}

	c.JSON(http.StatusOK, songs)
}

// GetSong godoc
// @Summary Get a song
// @Description Return a single song by ID
// @Tags songs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Song ID"
// @Success 200 {object} models.SongResponse
// @Failure 404 {object} models.ErrorResponse "Song not found"
// @Router /songs/{id} [get]
func (h *SongHandler) GetSong(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	song, err := h.songService.GetSong(id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "Song not found",
		})
		return
	}

	c.JSON(http.StatusOK, song)
}

// UpdateSong godoc
// @Summary Update song metadata
// @Description Update name, artist or duration of an owned song
// @Tags songs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Song ID"
// @Param request body models.UpdateSongRequest true "Fields to update"
// @Success 200 {object} models.SongResponse
// @Failure 403 {object} models.ErrorResponse "Not the song owner"
// @Failure 404 {object} models.ErrorResponse "Song not found"
// @Router /songs/{id} [patch]
func (h *SongHandler) UpdateSong(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
			Details: err.Error(),
		})
		return
	}

	song, err := h.songService.Update(userID, id, &req)
	if err != nil {
		respondSongError(c, err)
		return
	}

	c.JSON(http.StatusOK, song)
}

// DeleteSong godoc
// @Summary Delete a song
// @Description Delete an owned song and its stored audio
// @Tags songs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Song ID"
// @Success 204 "Deleted"
// @Failure 403 {object} models.ErrorResponse "Not the song owner"
// @Failure 404 {object} models.ErrorResponse "Song not found"
// @Router /songs/{id} [delete]
func (h *SongHandler) DeleteSong(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.songService.Delete(c.Request.Context(), userID, id); err != nil {
		respondSongError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondSongError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSongNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "Song not found",
		})
	case errors.Is(err, services.ErrNotSongOwner):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Code:    http.StatusForbidden,
			Message: "Not the owner of this song",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Operation failed",
		})
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "invalid id parameter",
		})
		return 0, false
	}
	return uint(id), true
}
