package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Offer amounts travel as plain JSON numbers, matching what web clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// RequestStatus is the lifecycle state of a collaboration request
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// Request is a collaboration proposal sent by a business to a creator
type Request struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	BusinessID   string          `gorm:"not null;index;size:64" json:"businessId"`
	CreatorID    string          `gorm:"not null;index;size:64" json:"creatorId"`
	Title        string          `gorm:"not null" json:"title"`
	Brief        string          `gorm:"type:text;not null" json:"brief"`
	OfferAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"offerAmount"` // zero means barter only
	Deliverables string          `gorm:"type:text" json:"deliverables"`
	Timeline     string          `json:"timeline"`
	Status       RequestStatus   `gorm:"not null;size:16;default:'pending';index" json:"status"`
	CreatedAt    time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	// Party display data, resolved at read time
	CreatorName   string `gorm:"-" json:"creatorName"`
	CreatorPhoto  string `gorm:"-" json:"creatorPhoto"`
	BusinessName  string `gorm:"-" json:"businessName"`
	BusinessPhoto string `gorm:"-" json:"businessPhoto"`
}

// TableName specifies the table name for the Request model
func (Request) TableName() string {
	return "collaboration_requests"
}

// IsParty reports whether userID is the business or the creator of the request.
func (r *Request) IsParty(userID string) bool {
	return userID != "" && (userID == r.BusinessID || userID == r.CreatorID)
}
