package models

import (
	"time"
)

// Message is one entry of a request's append-only chat transcript
type Message struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	RequestID    string    `gorm:"not null;size:36;uniqueIndex:idx_messages_request_seq,priority:1" json:"requestId"`
	Sequence     int64     `gorm:"not null;uniqueIndex:idx_messages_request_seq,priority:2" json:"sequence"` // insertion order within the request
	SenderUserID string    `gorm:"not null;size:64" json:"senderUserId"`
	SenderName   string    `json:"senderName"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
