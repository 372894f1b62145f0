package models

import (
	"encoding/json"
	"time"
)

type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
)

// PaymentEvent stores every verified webhook delivery from the payment
// processor. The provider+event unique index makes replays visible.
type PaymentEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Provider  PaymentProvider `gorm:"type:varchar(50);not null;uniqueIndex:ux_payment_events_provider_event,priority:1" json:"provider"`
	EventID   string          `gorm:"type:varchar(191);not null;uniqueIndex:ux_payment_events_provider_event,priority:2" json:"event_id"`
	EventType string          `gorm:"type:varchar(100);not null;index" json:"event_type"`
	Payload   json.RawMessage `gorm:"type:jsonb" json:"payload"`
}
