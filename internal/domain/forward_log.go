package domain

import "time"

const (
	ForwardStatusSuccess = "success"
	ForwardStatusFailed  = "failed"
)

// ForwardLog records a single forward attempt and how the gateway answered it.
type ForwardLog struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"index"`
	ArchiveID         string    `json:"archive_id" gorm:"size:36;index;not null"`
	MessageID         int64     `json:"message_id" gorm:"not null"`
	DestinationChatID string    `json:"destination_chat_id" gorm:"size:64;not null"`
	Status            string    `json:"status" gorm:"size:16;not null"`
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
