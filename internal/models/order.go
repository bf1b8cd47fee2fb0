package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Canonical order lifecycle statuses. The column is an open string set;
// these are the values the handlers and notifications use.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// IsTerminalStatus reports whether owner-initiated edits are disallowed.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// StatusChange is one entry of an order's append-only audit trail.
type StatusChange struct {
	Status            string     `json:"status"`
	Timestamp         time.Time  `json:"timestamp"`
	TrackingNumber    string     `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// StatusHistory is stored as a jsonb column.
type StatusHistory []StatusChange

// Value implements driver.Valuer.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner.
func (h *StatusHistory) Scan(value interface{}) error {
	if value == nil {
		*h = StatusHistory{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	}
	return errors.New("unsupported status history column type")
}

// Order is a placed order. Items are a snapshot taken at creation time and
// stay unchanged when products are later edited. History's last entry always
// carries the order's current status.
type Order struct {
	BaseModel
	UserID            *uuid.UUID    `gorm:"type:uuid;index" json:"user_id"`
	User              *User         `json:"user,omitempty"`
	CustomerName      string        `json:"customer_name"`
	Email             string        `json:"email"`
	Phone             string        `json:"phone"`
	Address           string        `json:"address"`
	Total             int64         `json:"total"`
	Status            string        `gorm:"index" json:"status"`
	StatusHistory     StatusHistory `gorm:"type:jsonb" json:"status_history"`
	TrackingNumber    string        `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time    `json:"estimated_delivery,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	Version           int64         `gorm:"not null;default:0" json:"-"`
	Items             []OrderItem   `json:"items,omitempty"`
}

// OrderItem is one snapshotted line of an order.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	Price       int64      `json:"price"`
	Quantity    int        `json:"quantity"`
}
