package archive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iyunix/go-chatarchive/internal/changefeed"
	"github.com/iyunix/go-chatarchive/internal/domain"
	"gorm.io/gorm"
)

var ErrArchiveNotFound = errors.New("archive not found")

const maxChatIDLength = 64

type gormArchiveRepository struct {
	db        *gorm.DB
	publisher changefeed.Publisher
}

// NewArchiveRepository returns a repository that announces every successful
// write on publisher.
func NewArchiveRepository(db *gorm.DB, publisher changefeed.Publisher) ArchiveRepository {
	return &gormArchiveRepository{db: db, publisher: publisher}
}

func (r *gormArchiveRepository) Create(ctx context.Context, archive *domain.ChatArchive) (*domain.ChatArchive, error) {
	if err := r.validateArchiveInput(archive); err != nil {
		log.Printf("[ArchiveRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	if archive.CreatedAt == nil {
		archive.CreatedAt = &now
	}
	archive.UpdatedAt = &now

	if err := r.db.WithContext(ctx).Create(archive).Error; err != nil {
		log.Printf("[ArchiveRepository] Database error during archive creation for user ID %d: %v", archive.UserID, err)
		return nil, errors.New("database error creating archive")
	}

	log.Printf("[ArchiveRepository] Archive created with ID: %s for user: %d", archive.ID, archive.UserID)
	r.publish(changefeed.EventInsert, archive.ID)
	return archive, nil
}

func (r *gormArchiveRepository) FindByID(ctx context.Context, id string) (*domain.ChatArchive, error) {
	if id == "" {
		return nil, errors.New("invalid archive ID")
	}
	var archive domain.ChatArchive
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&archive).Error
	return r.handleFindError(err, &archive, "FindByID")
}

func (r *gormArchiveRepository) FindByIDAndUserID(ctx context.Context, id string, userID uint) (*domain.ChatArchive, error) {
	if id == "" || userID == 0 {
		return nil, errors.New("invalid archive ID or user ID")
	}
	var archive domain.ChatArchive
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&archive).Error
	return r.handleFindError(err, &archive, "FindByIDAndUserID")
}

func (r *gormArchiveRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.ChatArchive, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var archives []domain.ChatArchive
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&archives).Error
	if err != nil {
		log.Printf("[ArchiveRepository] Database error finding archives for user ID %d: %v", userID, err)
		return nil, errors.New("database error fetching archives")
	}
	return archives, nil
}

// Delete removes one archive owned by userID. Messages referencing it are left alone.
func (r *gormArchiveRepository) Delete(ctx context.Context, id string, userID uint) error {
	if id == "" || userID == 0 {
		return errors.New("invalid archive ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.ChatArchive{})
	if result.Error != nil {
		log.Printf("[ArchiveRepository] Database error deleting archive %s for user ID %d: %v", id, userID, result.Error)
		return errors.New("database error deleting archive")
	}
	if result.RowsAffected == 0 {
		return ErrArchiveNotFound
	}

	log.Printf("[ArchiveRepository] Archive deleted: %s for user %d", id, userID)
	r.publish(changefeed.EventDelete, id)
	return nil
}

func (r *gormArchiveRepository) publish(t changefeed.EventType, id string) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(changefeed.Event{Table: changefeed.TableArchives, Type: t, RecordID: id})
}

func (r *gormArchiveRepository) validateArchiveInput(archive *domain.ChatArchive) error {
	if archive == nil {
		return errors.New("archive cannot be nil")
	}
	if archive.UserID == 0 {
		return errors.New("owner is required")
	}
	for _, v := range []*string{archive.SenderChatID, archive.ReceiverChatID} {
		if v != nil && len(*v) > maxChatIDLength {
			return fmt.Errorf("chat id exceeds %d characters", maxChatIDLength)
		}
	}
	return nil
}

func (r *gormArchiveRepository) handleFindError(err error, archive *domain.ChatArchive, operation string) (*domain.ChatArchive, error) {
	if err == nil {
		return archive, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArchiveNotFound
	}
	log.Printf("[ArchiveRepository] Database error in %s: %v", operation, err)
	return nil, errors.New("database error fetching archive")
}
