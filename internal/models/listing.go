package models

import (
	"time"
)

type ListingType string

const (
	ListingTypeBeats   ListingType = "beats"
	ListingTypeStems   ListingType = "stems"
	ListingTypeSamples ListingType = "samples"
	ListingTypePack    ListingType = "pack"
)

// ValidListingType reports whether t is one of the catalog's listing types.
func ValidListingType(t ListingType) bool {
	switch t {
	case ListingTypeBeats, ListingTypeStems, ListingTypeSamples, ListingTypePack:
		return true
	}
	return false
}

// Listing represents a sellable catalog entry (beat, stems, sample pack).
// Sold flips false->true exactly once, via webhook fulfillment.
type Listing struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title           string      `gorm:"type:varchar(255);not null" json:"title"`
	Type            ListingType `gorm:"type:varchar(20);not null" json:"type"`
	Description     *string     `gorm:"type:text" json:"description,omitempty"`
	Length          *string     `gorm:"type:varchar(20)" json:"length,omitempty"`
	BPM             *int        `json:"bpm,omitempty"`
	Key             *string     `gorm:"type:varchar(10)" json:"key,omitempty"`
	ImageURL        *string     `gorm:"type:text" json:"image_url,omitempty"`
	PreviewAudioURL *string     `gorm:"type:text" json:"preview_audio_url,omitempty"`
	Price           float64     `gorm:"type:decimal(10,2);not null" json:"price"`
	StripePriceID   *string     `gorm:"type:varchar(100)" json:"stripe_price_id,omitempty"`
	Featured        bool        `gorm:"default:false" json:"featured"`
	Sold            bool        `gorm:"default:false" json:"sold"`

	Tracks []Track `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"tracks,omitempty"`
}
