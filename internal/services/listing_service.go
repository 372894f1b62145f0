package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"beatshop/internal/models"
)

// featuredLimit caps the portfolio carousel.
const featuredLimit = 6

// ListingService is the CRUD accessor for catalog listings.
type ListingService struct {
	db *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

// ListingUpdate is the write set for a partial update. Nil fields are
// left untouched.
type ListingUpdate struct {
	Title           *string
	Type            *models.ListingType
	Description     *string
	Length          *string
	BPM             *int
	Key             *string
	ImageURL        *string
	PreviewAudioURL *string
	Price           *float64
	StripePriceID   *string
	Featured        *bool
}

// Changes maps the present fields to their column values.
func (u ListingUpdate) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Type != nil {
		changes["type"] = *u.Type
	}
	if u.Description != nil {
		changes["description"] = *u.Description
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
	if u.ImageURL != nil {
		changes["image_url"] = *u.ImageURL
	}
	if u.PreviewAudioURL != nil {
		changes["preview_audio_url"] = *u.PreviewAudioURL
	}
	if u.Price != nil {
		changes["price"] = *u.Price
	}
	if u.StripePriceID != nil {
		changes["stripe_price_id"] = *u.StripePriceID
	}
	if u.Featured != nil {
		changes["featured"] = *u.Featured
	}
	return changes
}

// GetAll returns every listing, newest first.
func (s *ListingService) GetAll(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&listings).Error
	return listings, err
}

// GetFeatured returns up to six featured listings, newest first.
func (s *ListingService) GetFeatured(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at desc").
		Limit(featuredLimit).
		Find(&listings).Error
	return listings, err
}

// GetByID fetches one listing. Returns ErrNotFound for unknown ids.
func (s *ListingService) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// Create inserts a new listing.
func (s *ListingService) Create(ctx context.Context, listing *models.Listing) error {
	return s.db.WithContext(ctx).Create(listing).Error
}

// Update applies a partial update. An empty write set is the ErrNoFields
// soft failure; no statement is issued.
func (s *ListingService) Update(ctx context.Context, id uint, update ListingUpdate) error {
	changes := update.Changes()
	if len(changes) == 0 {
		return ErrNoFields
	}
	return s.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Updates(changes).Error
}

// Delete removes a listing and every track it owns. The listing delete
// itself is idempotent; the DB-level cascade covers tracks as well.
func (s *ListingService) Delete(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Where("listing_id = ?", id).Delete(&models.Track{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Listing{}, id).Error
}

// Exists reports whether a listing row is present.
func (s *ListingService) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// MarkSoldByTitle flips sold for the unsold listing matching title
// exactly. Title matching is ambiguous by nature, so the flip only
// happens when exactly one unsold row matches; the match count is
// returned either way so callers can log zero or ambiguous matches.
func (s *ListingService) MarkSoldByTitle(ctx context.Context, title string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("title = ? AND sold = ?", title, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	if count != 1 {
		return count, nil
	}
	err = s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("title = ? AND sold = ?", title, false).
		Update("sold", true).Error
	return count, err
}
