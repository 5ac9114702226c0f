// File: internal/domain/archive.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatArchive describes one bot/chat pair being archived.
// The counter columns are maintained by the ingestion worker; this service only reads them.
type ChatArchive struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	UserID           uint       `json:"user_id" gorm:"not null;index"`
	APIKey           string     `json:"-" gorm:"column:api_key;not null"`
	BotName          *string    `json:"bot_name"`
	SenderChatID     *string    `json:"sender_chat_id" gorm:"size:64"`
	ReceiverChatID   *string    `json:"receiver_chat_id" gorm:"size:64"`
	MessagesChecked  *int64     `json:"messages_checked"`
	LastMessageID    *int64     `json:"last_message_id"`
	CurrentMessageID *int64     `json:"current_message_id"`
	CreatedAt        *time.Time `json:"created_at" gorm:"index"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

func (ChatArchive) TableName() string { return "chat_archives" }

// BeforeCreate assigns the opaque id when the caller left it empty.
func (a *ChatArchive) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
