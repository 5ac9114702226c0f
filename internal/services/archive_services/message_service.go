package archive_services

import (
	"context"
	"errors"

	"github.com/iyunix/go-chatarchive/internal/domain"
	"github.com/iyunix/go-chatarchive/internal/preferences"
	"github.com/iyunix/go-chatarchive/internal/repository/archive"
	"github.com/iyunix/go-chatarchive/internal/repository/forwardlog"
	"github.com/iyunix/go-chatarchive/internal/repository/message"
	"github.com/iyunix/go-chatarchive/internal/services/telegram"
	"github.com/iyunix/go-chatarchive/internal/vault"
)

// MessageService backs the message viewer.
type MessageService struct {
	archiveRepo archive.ArchiveRepository
	messageRepo message.MessageRepository
	forwardLogs forwardlog.ForwardLogRepository
	gateway     telegram.Gateway
	session     SessionProvider
	sealer      *vault.Sealer
	logger      Logger
}

func NewMessageService(
	archiveRepo archive.ArchiveRepository,
	messageRepo message.MessageRepository,
	forwardLogs forwardlog.ForwardLogRepository,
	gateway telegram.Gateway,
	session SessionProvider,
	sealer *vault.Sealer,
	logger Logger,
) *MessageService {
	return &MessageService{
		archiveRepo: archiveRepo,
		messageRepo: messageRepo,
		forwardLogs: forwardLogs,
		gateway:     gateway,
		session:     session,
		sealer:      sealer,
		logger:      logger,
	}
}

// ListMessages returns the messages of the selected archive in ascending
// message id order. No archive selected means no query and a nil result.
// An archive owned by someone else is NotFound; messages whose archive row is
// gone (deleted without cascade) are still listed.
func (s *MessageService) ListMessages(ctx context.Context, archiveID string) ([]domain.MessageArchive, error) {
	if archiveID == "" {
		return nil, nil
	}
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return nil, NewAuthRequiredError("list_messages")
	}

	parent, err := s.archiveRepo.FindByID(ctx, archiveID)
	switch {
	case errors.Is(err, archive.ErrArchiveNotFound):
	case err != nil:
		s.logger.Error("error loading archive", "error", err, "archive_id", archiveID)
		return nil, NewRemoteError("list_messages", "Failed to load messages", err)
	case parent.UserID != userID:
		s.logger.Warn("message list for foreign archive", "archive_id", archiveID, "user_id", userID)
		return nil, NewNotFoundError("list_messages", "Archive not found", archive.ErrArchiveNotFound)
	}

	messages, err := s.messageRepo.FindByArchiveID(ctx, archiveID)
	if err != nil {
		s.logger.Error("error loading messages", "error", err, "archive_id", archiveID)
		return nil, NewRemoteError("list_messages", "Failed to load messages", err)
	}
	return messages, nil
}

// ForwardMessage sends message messageID of the archive to the operator's own
// chat, read from prefs. Without that chat id nothing is sent.
func (s *MessageService) ForwardMessage(ctx context.Context, prefs preferences.Store, archiveID string, messageID int64) error {
	destination, ok := prefs.Get(preferences.KeyUserChatID)
	if !ok {
		return NewValidationError("forward_message", "Set your chat ID in your profile first")
	}

	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return NewAuthRequiredError("forward_message")
	}

	a, err := s.archiveRepo.FindByIDAndUserID(ctx, archiveID, userID)
	if err != nil {
		if errors.Is(err, archive.ErrArchiveNotFound) {
			return NewNotFoundError("forward_message", "Archive not found", err)
		}
		return NewRemoteError("forward_message", "Failed to load archive", err)
	}
	if a.SenderChatID == nil || *a.SenderChatID == "" {
		return NewValidationError("forward_message", "This archive has no sender chat ID")
	}

	if _, err := s.messageRepo.FindByArchiveAndMessageID(ctx, a.ID, messageID); err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return NewNotFoundError("forward_message", "Message not found", err)
		}
		return NewRemoteError("forward_message", "Failed to load message", err)
	}

	token, err := s.sealer.Open(a.APIKey)
	if err != nil {
		s.logger.Error("stored credential cannot be opened", "error", err, "archive_id", a.ID)
		return NewRemoteError("forward_message", "Stored bot credential is unreadable", err)
	}

	err = s.gateway.ForwardMessage(ctx, telegram.ForwardRequest{
		Token:      token,
		ToChatID:   destination,
		FromChatID: *a.SenderChatID,
		MessageID:  messageID,
	})
	s.recordForward(ctx, userID, a.ID, messageID, destination, err)

	if err != nil {
		s.logger.Error("error forwarding message", "error", err, "archive_id", a.ID, "message_id", messageID)
		description := "Failed to forward message"
		var gwErr *telegram.GatewayError
		if errors.As(err, &gwErr) && gwErr.Type == telegram.ErrTypeProvider {
			description = gwErr.Description()
		}
		return NewRemoteError("forward_message", description, err)
	}

	s.logger.Info("message forwarded", "archive_id", a.ID, "message_id", messageID, "user_id", userID)
	return nil
}

// ForwardHistory lists earlier forward attempts for an archive the user owns.
func (s *MessageService) ForwardHistory(ctx context.Context, archiveID string) ([]domain.ForwardLog, error) {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return nil, NewAuthRequiredError("forward_history")
	}
	if _, err := s.archiveRepo.FindByIDAndUserID(ctx, archiveID, userID); err != nil {
		return nil, NewNotFoundError("forward_history", "Archive not found", err)
	}
	entries, err := s.forwardLogs.FindByArchiveID(ctx, archiveID)
	if err != nil {
		return nil, NewRemoteError("forward_history", "Failed to load forward history", err)
	}
	return entries, nil
}

func (s *MessageService) recordForward(ctx context.Context, userID uint, archiveID string, messageID int64, destination string, forwardErr error) {
	entry := &domain.ForwardLog{
		UserID:            userID,
		ArchiveID:         archiveID,
		MessageID:         messageID,
		DestinationChatID: destination,
		Status:            domain.ForwardStatusSuccess,
	}
	if forwardErr != nil {
		entry.Status = domain.ForwardStatusFailed
		entry.Error = forwardErr.Error()
	}
	if err := s.forwardLogs.Create(ctx, entry); err != nil {
		s.logger.Warn("forward log not written", "error", err, "archive_id", archiveID)
	}
}
