package archive

import (
	"context"

	"github.com/iyunix/go-chatarchive/internal/domain"
)

// ArchiveRepository handles chat_archives rows.
type ArchiveRepository interface {
	Create(ctx context.Context, archive *domain.ChatArchive) (*domain.ChatArchive, error)
	FindByID(ctx context.Context, id string) (*domain.ChatArchive, error)
	FindByIDAndUserID(ctx context.Context, id string, userID uint) (*domain.ChatArchive, error)
	// FindByUserID returns newest first.
	FindByUserID(ctx context.Context, userID uint) ([]domain.ChatArchive, error)
	Delete(ctx context.Context, id string, userID uint) error
}
