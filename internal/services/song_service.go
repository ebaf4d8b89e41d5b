package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"remaudio-service/internal/models"
	"remaudio-service/internal/repositories/postgres"
	"remaudio-service/internal/storage"
)

var (
	ErrSongNotFound    = errors.New("song not found")
	ErrNotSongOwner    = errors.New("not the owner of this song")
	ErrInvalidMimeType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)

const maxAudioSize = 100 << 20 // 100 MB

type SongService struct {
	repo    *postgres.SongRepository
	storage *storage.MinIOClient
}

func NewSongService(repo *postgres.SongRepository, storage *storage.MinIOClient) *SongService {
	return &SongService{
		repo:    repo,
		storage: storage,
	}
}

// Upload stores the audio file (and optional cover image) and persists the song record.
func (s *SongService) Upload(ctx context.Context, userID uint, name, artist, duration string, audio, cover *multipart.FileHeader) (*models.SongResponse, error) {
	if audio == nil {
		return nil, ErrInvalidRequest
	}
	if audio.Size > maxAudioSize {
		return nil, ErrFileTooLarge
	}
	contentType := audio.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") && !strings.HasPrefix(contentType, "video/") {
		return nil, ErrInvalidMimeType
	}

	audioURL, objectName, err := s.storage.UploadAudio(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	var coverURL string
	if cover != nil {
		if !strings.HasPrefix(cover.Header.Get("Content-Type"), "image/") {
			return nil, ErrInvalidMimeType
		}
		coverURL, _, err = s.storage.UploadImage(ctx, cover)
		if err != nil {
			return nil, fmt.Errorf("failed to upload cover image: %w", err)
		}
	}

	if name == "" {
		name = audio.Filename
	}

	song := models.Song{
		Name:        name,
		Artist:      artist,
		AudioURL:    audioURL,
		CoverImgURL: coverURL,
		FilePath:    objectName,
		Duration:    duration,
		UserID:      userID,
	}

	if err := s.repo.Create(&song); err != nil {
		// Keep the bucket consistent when the record cannot be saved.
		if delErr := s.storage.Delete(ctx, objectName); delErr != nil {
			slog.Error("Failed to clean up orphaned object", "object", objectName, "error", delErr)
		}
		return nil, fmt.Errorf("failed to save song: %w", err)
	}

	slog.Info("Song uploaded", "songID", song.ID, "userID", userID, "object", objectName)

	resp := song.ToResponse()
	return &resp, nil
}

func (s *SongService) GetSong(id uint) (*models.SongResponse, error) {
	song, err := s.repo.FindByID(id)
	if err != nil {
		return nil, ErrSongNotFound
	}
	resp := song.ToResponse()
	return &resp, nil
}

func (s *SongService) ListUserSongs(userID uint) ([]models.SongResponse, error) {
	songs, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	responses := make([]models.SongResponse, len(songs))
	for i := range songs {
		responses[i] = songs[i].ToResponse()
	}
	return responses, nil
}

func (s *SongService) Search(query string) ([]models.SongResponse, error) {
	songs, err := s.repo.Search(query, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}

	responses := make([]models.SongResponse, len(songs))
	for i := range songs {
		responses[i] = songs[i].ToResponse()
	}
	return responses, nil
}

func (s *SongService) Update(userID, songID uint, req *models.UpdateSongRequest) (*models.SongResponse, error) {
	song, err := s.repo.FindByID(songID)
	if err != nil {
		return nil, ErrSongNotFound
	}
	if song.UserID != userID {
		return nil, ErrNotSongOwner
	}

	if req.Name != nil {
		song.Name = *req.Name
	}
	if req.Artist != nil {
		song.Artist = *req.Artist
	}
	if req.Duration != nil {
		song.Duration = *req.Duration
	}

	if err := s.repo.Update(song); err != nil {
		return nil, fmt.Errorf("failed to update song: %w", err)
	}

	resp := song.ToResponse()
	return &resp, nil
}

func (s *SongService) Delete(ctx context.Context, userID, songID uint) error {
	song, err := s.repo.FindByID(songID)
	if err != nil {
		return ErrSongNotFound
	}
	if song.UserID != userID {
		return ErrNotSongOwner
	}

	if err := s.repo.Delete(songID); err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	// The record is gone either way; losing the object only wastes space.
	if err := s.storage.Delete(ctx, song.FilePath); err != nil {
		slog.Error("Failed to delete audio object", "object", song.FilePath, "error", err)
	}

	return nil
}
