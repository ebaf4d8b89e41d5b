package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Song represents an uploaded track
type Song struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Artist      string `json:"artist,omitempty"`
	AudioURL    string `json:"audioURL,omitempty"`
	CoverImgURL string `json:"coverImgURL,omitempty"`
	// FilePath is the object name under which the audio is stored.
	FilePath string `gorm:"not null" json:"filePath"`
	Duration string `json:"duration,omitempty"`
	UserID   uint   `gorm:"not null" json:"userId"`

	Playlists []*Playlist `gorm:"many2many:playlist_songs" json:"playlists,omitempty"`
}

/** -------------------- DTOs -------------------- */

type UpdateSongRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1"`
	Artist   *string `json:"artist,omitempty"`
	Duration *string `json:"duration,omitempty"`
}

type SongResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Artist      string    `json:"artist,omitempty"`
	AudioURL    string    `json:"audioURL,omitempty"`
	CoverImgURL string    `json:"coverImgURL,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	UserID      uint      `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Song) ToResponse() SongResponse {
	return SongResponse{
		ID:          s.ID,
		Name:        s.Name,
		Artist:      s.Artist,
		AudioURL:    s.AudioURL,
		CoverImgURL: s.CoverImgURL,
		Duration:    s.Duration,
		UserID:      s.UserID,
		CreatedAt:   s.CreatedAt,
	}
}
