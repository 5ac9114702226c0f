package message

import (
	"context"

	"github.com/iyunix/go-chatarchive/internal/domain"
)

// MessageRepository reads message_archives rows. Rows are written by the ingestion worker.
type MessageRepository interface {
	// FindByArchiveID returns messages in ascending message_id order.
	FindByArchiveID(ctx context.Context, archiveID string) ([]domain.MessageArchive, error)
	FindByArchiveAndMessageID(ctx context.Context, archiveID string, messageID int64) (*domain.MessageArchive, error)
}
