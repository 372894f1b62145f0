package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beatshop/internal/models"
)

// PaymentEventService keeps the durable record of verified processor
// webhook deliveries.
type PaymentEventService struct {
	db *gorm.DB
}

func NewPaymentEventService(db *gorm.DB) *PaymentEventService {
	return &PaymentEventService{db: db}
}

// Record inserts one verified event. Replays of the same provider
// event id are ignored by the unique index rather than erroring.
func (s *PaymentEventService) Record(ctx context.Context, eventID, eventType string, payload json.RawMessage) error {
	event := models.PaymentEvent{
		Provider:  models.PaymentProviderStripe,
		EventID:   eventID,
		EventType: eventType,
		Payload:   payload,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&event).Error
}
