package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscription is a standalone mailing-list entry, not tied to an
// account.
type NewsletterSubscription struct {
	BaseModel
	Email        string    `gorm:"uniqueIndex" json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// Subscription is a recurring-delivery subscription for a bakery product.
type Subscription struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ProductID    uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Product      *Product  `json:"product,omitempty"`
	Quantity     int       `json:"quantity"`
	IntervalDays int       `json:"interval_days"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
}
