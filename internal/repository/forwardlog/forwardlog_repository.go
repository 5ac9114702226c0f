package forwardlog

import (
	"context"
	"errors"
	"log"

	"github.com/iyunix/go-chatarchive/internal/domain"
	"gorm.io/gorm"
)

type ForwardLogRepository interface {
	Create(ctx context.Context, entry *domain.ForwardLog) error
	FindByArchiveID(ctx context.Context, archiveID string) ([]domain.ForwardLog, error)
}

type gormForwardLogRepository struct {
	db *gorm.DB
}

func NewForwardLogRepository(db *gorm.DB) ForwardLogRepository {
	return &gormForwardLogRepository{db: db}
}

func (r *gormForwardLogRepository) Create(ctx context.Context, entry *domain.ForwardLog) error {
	if entry == nil || entry.ArchiveID == "" {
		return errors.New("invalid forward log entry")
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("[ForwardLogRepository] Database error recording forward of message %d: %v", entry.MessageID, err)
		return errors.New("database error recording forward")
	}
	return nil
}

// FindByArchiveID returns the newest attempts first.
func (r *gormForwardLogRepository) FindByArchiveID(ctx context.Context, archiveID string) ([]domain.ForwardLog, error) {
	var entries []domain.ForwardLog
	err := r.db.WithContext(ctx).
		Where("archive_id = ?", archiveID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, errors.New("database error fetching forward log")
	}
	return entries, nil
}
