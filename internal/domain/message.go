// File: internal/domain/message.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageArchive is one archived message. ChatArchiveID is a plain back-reference:
// deleting the archive leaves its messages in place.
type MessageArchive struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	ChatArchiveID  *string    `json:"chat_archive_id" gorm:"size:36;uniqueIndex:idx_archive_message"`
	MessageID      int64      `json:"message_id" gorm:"not null;uniqueIndex:idx_archive_message"`
	MessageContent string     `json:"message_content" gorm:"not null"`
	CreatedAt      *time.Time `json:"created_at"`
}

func (MessageArchive) TableName() string { return "message_archives" }

func (m *MessageArchive) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
