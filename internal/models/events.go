package models

import "time"

// Event types
const (
	EventTypeOrderPlaced   = "ORDER_PLACED"
	EventTypePaymentFailed = "PAYMENT_FAILED"
	EventTypeUserSignedUp  = "USER_SIGNED_UP"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when checkout commits an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID        string      `json:"order_id"`
	UserID         string      `json:"user_id"`
	Total          int64       `json:"total"`
	PaymentMethod  string      `json:"payment_method"`
	TrackingNumber string      `json:"tracking_number"`
	Items          []OrderLine `json:"items"`
}

// PaymentFailedEvent published when the payment gateway declines a charge
type PaymentFailedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// UserSignedUpEvent published when a new account is created
type UserSignedUpEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
