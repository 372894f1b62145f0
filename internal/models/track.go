package models

import (
	"time"
)

// Track is one audio asset owned by a listing. Position gives a stable
// display order (position asc, then id asc).
type Track struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ListingID uint    `gorm:"not null;index" json:"listing_id"`
	Title     string  `gorm:"type:varchar(255);not null" json:"title"`
	Length    *string `gorm:"type:varchar(20)" json:"length,omitempty"`
	BPM       *int    `json:"bpm,omitempty"`
	Key       *string `gorm:"type:varchar(10)" json:"key,omitempty"`
	AudioKey  string  `gorm:"type:text;index" json:"audio_key"`
	Position  int     `gorm:"default:0" json:"position"`
}
