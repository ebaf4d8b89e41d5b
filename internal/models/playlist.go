package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Playlist represents a user-owned collection of songs
type Playlist struct {
	gorm.Model
	Name   string `gorm:"not null" json:"name"`
	UserID uint   `gorm:"not null" json:"userId"`

	Songs []*Song `gorm:"many2many:playlist_songs;constraint:OnDelete:CASCADE" json:"songs,omitempty"`
}

/** -------------------- DTOs -------------------- */

type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type UpdatePlaylistRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddSongsRequest adds existing songs to a playlist
type AddSongsRequest struct {
	SongIDs []uint `json:"songIds" binding:"required,min=1"`
}

type PlaylistResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	UserID    uint           `json:"userId"`
	CreatedAt time.Time      `json:"createdAt"`
	Songs     []SongResponse `json:"songs,omitempty"`
}

func (p *Playlist) ToResponse() PlaylistResponse {
	resp := PlaylistResponse{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
	for _, s := range p.Songs {
		resp.Songs = append(resp.Songs, s.ToResponse())
	}
	return resp
}
