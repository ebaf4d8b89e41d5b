package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"remaudio-service/internal/models"
)

type SongRepository struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) *SongRepository {
	return &SongRepository{db: db}
}

func (r *SongRepository) Create(song *models.Song) error {
	if err := r.db.Create(song).Error; err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}
	return nil
}

func (r *SongRepository) FindByID(id uint) (*models.Song, error) {
	var song models.Song
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&song).Error
	if err != nil {
		return nil, err
	}
	return &song, nil
}

func (r *SongRepository) FindByUser(userID uint) ([]models.Song, error) {
	var songs []models.Song
	err := r.db.Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("created_at DESC").
		Find(&songs).Error
	if err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *SongRepository) Search(query string, limit int) ([]models.Song, error) {
	var songs []models.Song
	pattern := "%" + query + "%"
	err := r.db.Where("(name ILIKE ? OR artist ILIKE ?) AND deleted_at IS NULL", pattern, pattern).
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *SongRepository) Update(song *models.Song) error {
	return r.db.Save(song).Error
}

func (r *SongRepository) Delete(id uint) error {
	return r.db.Delete(&models.Song{}, id).Error
}
