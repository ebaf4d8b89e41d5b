package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"remaudio-service/internal/models"
)

type PlaylistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	if err := r.db.Create(playlist).Error; err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepository) FindByID(id uint) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.db.Preload("Songs").Where("id = ? AND deleted_at IS NULL", id).First(&playlist).Error
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (r *PlaylistRepository) FindByUser(userID uint) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := r.db.Preload("Songs").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("created_at DESC").
		Find(&playlists).Error
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

func (r *PlaylistRepository) Update(playlist *models.Playlist) error {
	return r.db.Save(playlist).Error
}

func (r *PlaylistRepository) Delete(id uint) error {
	return r.db.Select("Songs").Delete(&models.Playlist{Model: gorm.Model{ID: id}}).Error
}

// AddSongs appends songs to the playlist association, skipping duplicates.
func (r *PlaylistRepository) AddSongs(playlist *models.Playlist, songs []*models.Song) error {
	if err := r.db.Model(playlist).Association("Songs").Append(songs); err != nil {
		return fmt.Errorf("failed to add songs to playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepository) RemoveSong(playlist *models.Playlist, song *models.Song) error {
	if err := r.db.Model(playlist).Association("Songs").Delete(song); err != nil {
		return fmt.Errorf("failed to remove song from playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepository) FindSongsByIDs(ids []uint) ([]*models.Song, error) {
	var songs []*models.Song
	err := r.db.Where("id IN ? AND deleted_at IS NULL", ids).Find(&songs).Error
	if err != nil {
		return nil, err
	}
	return songs, nil
}
