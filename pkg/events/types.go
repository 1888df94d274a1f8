package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProductCreated        = "product_created"
	ProductUpdated        = "product_updated"
	ProductDeleted        = "product_deleted"
	ProductPublishToggled = "product_publish_toggled"

	LoginCompleted     = "login_completed"
	CodeVerified       = "code_verified"
	OTPResendRequested = "otp_resend_requested"
)

type ProductEvent struct {
	EventID     string    `json:"eventID"`
	Type        string    `json:"type"`
	ProductID   int64     `json:"productID"`
	Name        string    `json:"name,omitempty"`
	IsPublished bool      `json:"isPublished"`
	At          time.Time `json:"at"`
}

func NewProductEvent(typ string, productID int64, name string, published bool) ProductEvent {
	return ProductEvent{
		EventID:     uuid.NewString(),
		Type:        typ,
		ProductID:   productID,
		Name:        name,
		IsPublished: published,
		At:          time.Now().UTC(),
	}
}

type SessionEvent struct {
	EventID    string    `json:"eventID"`
	Type       string    `json:"type"`
	Identifier string    `json:"identifier"`
	At         time.Time `json:"at"`
}

func NewSessionEvent(typ, identifier string) SessionEvent {
	return SessionEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		Identifier: identifier,
		At:         time.Now().UTC(),
	}
}
