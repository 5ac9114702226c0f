package message

import (
	"context"
	"errors"
	"log"

	"github.com/iyunix/go-chatarchive/internal/domain"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) FindByArchiveID(ctx context.Context, archiveID string) ([]domain.MessageArchive, error) {
	if archiveID == "" {
		return nil, errors.New("invalid archive ID")
	}

	var messages []domain.MessageArchive
	err := r.db.WithContext(ctx).
		Where("chat_archive_id = ?", archiveID).
		Order("message_id ASC").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for archive %s: %v", archiveID, err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) FindByArchiveAndMessageID(ctx context.Context, archiveID string, messageID int64) (*domain.MessageArchive, error) {
	if archiveID == "" {
		return nil, errors.New("invalid archive ID")
	}

	var msg domain.MessageArchive
	err := r.db.WithContext(ctx).
		Where("chat_archive_id = ? AND message_id = ?", archiveID, messageID).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		log.Printf("[MessageRepository] Database error finding message %d in archive %s: %v", messageID, archiveID, err)
		return nil, errors.New("database error fetching message")
	}
	return &msg, nil
}
