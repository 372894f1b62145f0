package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"beatshop/internal/models"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestListingUpdateChanges(t *testing.T) {
	beats := models.ListingTypeBeats

	tests := []struct {
		name     string
		update   ListingUpdate
		expected map[string]interface{}
	}{
		{
			name:     "empty update has no changes",
			update:   ListingUpdate{},
			expected: map[string]interface{}{},
		},
		{
			name:   "single field",
			update: ListingUpdate{Featured: boolPtr(true)},
			expected: map[string]interface{}{
				"featured": true,
			},
		},
		{
			name: "full field set",
			update: ListingUpdate{
				Title:           strPtr("Trap Beat 1"),
				Type:            &beats,
				Description:     strPtr("dark trap"),
				Length:          strPtr("3:02"),
				BPM:             intPtr(140),
				Key:             strPtr("Am"),
				ImageURL:        strPtr("/api/uploads/images/1_cover.webp"),
				PreviewAudioURL: strPtr("/api/uploads/audio/previews/1_p.mp3"),
				Price:           floatPtr(19.99),
				StripePriceID:   strPtr("price_123"),
				Featured:        boolPtr(false),
			},
			expected: map[string]interface{}{
				"title":             "Trap Beat 1",
				"type":              beats,
				"description":       "dark trap",
				"length":            "3:02",
				"bpm":               140,
				"key":               "Am",
				"image_url":         "/api/uploads/images/1_cover.webp",
				"preview_audio_url": "/api/uploads/audio/previews/1_p.mp3",
				"price":             19.99,
				"stripe_price_id":   "price_123",
				"featured":          false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.update.Changes(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Changes() = %v; want %v", got, tt.expected)
			}
		})
	}
}

func TestListingUpdateEmptySetIsSoftFailure(t *testing.T) {
	// A nil DB proves no statement is issued: reaching the database
	// would panic.
	svc := NewListingService(nil)

	err := svc.Update(context.Background(), 1, ListingUpdate{})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("Update() error = %v; want ErrNoFields", err)
	}
}

func TestTrackUpdateChanges(t *testing.T) {
	update := TrackUpdate{
		Title:    strPtr("Intro"),
		Position: intPtr(2),
	}

	expected := map[string]interface{}{
		"title":    "Intro",
		"position": 2,
	}
	if got := update.Changes(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Changes() = %v; want %v", got, expected)
	}
}

func TestTrackUpdateEmptySetIsSoftFailure(t *testing.T) {
	svc := NewTrackService(nil)

	err := svc.Update(context.Background(), 1, TrackUpdate{})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("Update() error = %v; want ErrNoFields", err)
	}
}

func TestValidListingType(t *testing.T) {
	tests := []struct {
		input    models.ListingType
		expected bool
	}{
		{models.ListingTypeBeats, true},
		{models.ListingTypeStems, true},
		{models.ListingTypeSamples, true},
		{models.ListingTypePack, true},
		{models.ListingType("vinyl"), false},
		{models.ListingType(""), false},
	}

	for _, tt := range tests {
		if got := models.ValidListingType(tt.input); got != tt.expected {
			t.Errorf("ValidListingType(%q) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}
