package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"remaudio-service/internal/models"
	"remaudio-service/internal/repositories/postgres"
)

var (
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrNotPlaylistOwner = errors.New("not the owner of this playlist")
)

type PlaylistService struct {
	repo *postgres.PlaylistRepository
}

func NewPlaylistService(repo *postgres.PlaylistRepository) *PlaylistService {
	return &PlaylistService{repo: repo}
}

func (s *PlaylistService) Create(userID uint, req *models.CreatePlaylistRequest) (*models.PlaylistResponse, error) {
	playlist := models.Playlist{
		Name:   req.Name,
		UserID: userID,
	}

	if err := s.repo.Create(&playlist); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	resp := playlist.ToResponse()
	return &resp, nil
}

func (s *PlaylistService) GetPlaylist(id uint) (*models.PlaylistResponse, error) {
	playlist, err := s.repo.FindByID(id)
	if err != nil {
		return nil, ErrPlaylistNotFound
	}
	resp := playlist.ToResponse()
	return &resp, nil
}

func (s *PlaylistService) ListUserPlaylists(userID uint) ([]models.PlaylistResponse, error) {
	playlists, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	responses := make([]models.PlaylistResponse, len(playlists))
	for i := range playlists {
		responses[i] = playlists[i].ToResponse()
	}
	return responses, nil
}

func (s *PlaylistService) Update(userID, playlistID uint, req *models.UpdatePlaylistRequest) (*models.PlaylistResponse, error) {
	playlist, err := s.ownedPlaylist(userID, playlistID)
	if err != nil {
		return nil, err
	}

	playlist.Name = req.Name
	if err := s.repo.Update(playlist); err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}

	resp := playlist.ToResponse()
	return &resp, nil
}

func (s *PlaylistService) Delete(userID, playlistID uint) error {
	if _, err := s.ownedPlaylist(userID, playlistID); err != nil {
		return err
	}
	if err := s.repo.Delete(playlistID); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return nil
}

// AddSongs attaches existing songs to the playlist. Unknown song IDs are rejected.
func (s *PlaylistService) AddSongs(userID, playlistID uint, req *models.AddSongsRequest) (*models.PlaylistResponse, error) {
	playlist, err := s.ownedPlaylist(userID, playlistID)
	if err != nil {
		return nil, err
	}

	songs, err := s.repo.FindSongsByIDs(req.SongIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up songs: %w", err)
	}
	if len(songs) != len(req.SongIDs) {
		return nil, ErrSongNotFound
	}

	if err := s.repo.AddSongs(playlist, songs); err != nil {
		return nil, err
	}

	return s.GetPlaylist(playlistID)
}

func (s *PlaylistService) RemoveSong(userID, playlistID, songID uint) (*models.PlaylistResponse, error) {
	playlist, err := s.ownedPlaylist(userID, playlistID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveSong(playlist, &models.Song{Model: gorm.Model{ID: songID}}); err != nil {
		return nil, err
	}

	return s.GetPlaylist(playlistID)
}

func (s *PlaylistService) ownedPlaylist(userID, playlistID uint) (*models.Playlist, error) {
	playlist, err := s.repo.FindByID(playlistID)
	if err != nil {
		return nil, ErrPlaylistNotFound
	}
	if playlist.UserID != userID {
		return nil, ErrNotPlaylistOwner
	}
	return playlist, nil
}
