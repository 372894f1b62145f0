package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"beatshop/internal/models"
)

// TrackService is the CRUD accessor for listing tracks.
type TrackService struct {
	db *gorm.DB
}

func NewTrackService(db *gorm.DB) *TrackService {
	return &TrackService{db: db}
}

// TrackUpdate is the write set for a partial track update.
type TrackUpdate struct {
	Title    *string
	Length   *string
	BPM      *int
	Key      *string
	AudioKey *string
	Position *int
}

func (u TrackUpdate) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Length != nil {
		changes["length"] = *u.Length
	}
	if u.BPM != nil {
		changes["bpm"] = *u.BPM
	}
	if u.Key != nil {
		changes["key"] = *u.Key
	}
	if u.AudioKey != nil {
		changes["audio_key"] = *u.AudioKey
	}
	if u.Position != nil {
		changes["position"] = *u.Position
	}
	return changes
}

// GetByListing returns a listing's tracks in display order.
func (s *TrackService) GetByListing(ctx context.Context, listingID uint) ([]models.Track, error) {
	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("position asc, id asc").
		Find(&tracks).Error
	return tracks, err
}

// GetByID fetches one track. Returns ErrNotFound for unknown ids.
func (s *TrackService) GetByID(ctx context.Context, id uint) (*models.Track, error) {
	var track models.Track
	if err := s.db.WithContext(ctx).First(&track, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &track, nil
}

// GetByAudioKey resolves the track owning a stored audio object.
func (s *TrackService) GetByAudioKey(ctx context.Context, key string) (*models.Track, error) {
	var track models.Track
	err := s.db.WithContext(ctx).Where("audio_key = ?", key).First(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &track, nil
}

// Create inserts a new track. Position defaults to 0.
func (s *TrackService) Create(ctx context.Context, track *models.Track) error {
	return s.db.WithContext(ctx).Create(track).Error
}

// Update applies a partial update; empty write set is ErrNoFields.
func (s *TrackService) Update(ctx context.Context, id uint, update TrackUpdate) error {
	changes := update.Changes()
	if len(changes) == 0 {
		return ErrNoFields
	}
	return s.db.WithContext(ctx).Model(&models.Track{}).Where("id = ?", id).Updates(changes).Error
}

// Delete removes one track.
func (s *TrackService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Track{}, id).Error
}

// DeleteByListing removes every track owned by a listing.
func (s *TrackService) DeleteByListing(ctx context.Context, listingID uint) error {
	return s.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&models.Track{}).Error
}

// Exists reports whether a track row is present.
func (s *TrackService) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Track{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
