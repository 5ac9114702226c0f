package archive_services

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/go-chatarchive/internal/debounce"
	"github.com/iyunix/go-chatarchive/internal/domain"
	"github.com/iyunix/go-chatarchive/internal/repository/archive"
	"github.com/iyunix/go-chatarchive/internal/services/telegram"
	"github.com/iyunix/go-chatarchive/internal/vault"
)

// CreateArchiveInput is the archive form as submitted.
type CreateArchiveInput struct {
	APIKey         string
	BotName        string
	SenderChatID   string
	ReceiverChatID string
}

// BotResolution is the outcome of validating a credential.
// Superseded means a newer keystroke replaced this check; the caller keeps its current state.
type BotResolution struct {
	BotName    string
	Superseded bool
}

// ArchiveService backs the archive form and the archive list.
type ArchiveService struct {
	archiveRepo archive.ArchiveRepository
	gateway     telegram.Gateway
	session     SessionProvider
	sealer      *vault.Sealer
	debouncer   *debounce.Debouncer
	logger      Logger
}

func NewArchiveService(
	archiveRepo archive.ArchiveRepository,
	gateway telegram.Gateway,
	session SessionProvider,
	sealer *vault.Sealer,
	debouncer *debounce.Debouncer,
	logger Logger,
) *ArchiveService {
	return &ArchiveService{
		archiveRepo: archiveRepo,
		gateway:     gateway,
		session:     session,
		sealer:      sealer,
		debouncer:   debouncer,
		logger:      logger,
	}
}

// ResolveBotName validates apiKey against the gateway once the form identified
// by formKey has been quiet for the debounce delay. An empty key cancels any
// pending check and clears the name without a network call.
func (s *ArchiveService) ResolveBotName(ctx context.Context, formKey, apiKey string) (*BotResolution, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		s.debouncer.Cancel(formKey)
		return &BotResolution{}, nil
	}

	var identity *telegram.BotIdentity
	err := s.debouncer.Do(ctx, formKey, func(ctx context.Context) error {
		var err error
		identity, err = s.gateway.GetMe(ctx, apiKey)
		return err
	})
	switch {
	case errors.Is(err, debounce.ErrSuperseded):
		return &BotResolution{Superseded: true}, nil
	case err != nil:
		s.logger.Warn("bot credential validation failed", "error", err)
		return &BotResolution{}, NewRemoteError("resolve_bot", "Invalid bot API key", err)
	}

	s.logger.Debug("bot credential validated", "bot", identity.Username)
	return &BotResolution{BotName: identity.Username}, nil
}

// CreateArchive inserts a new archive owned by the signed-in user.
func (s *ArchiveService) CreateArchive(ctx context.Context, in CreateArchiveInput) (*domain.ChatArchive, error) {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		s.logger.Warn("archive creation without session")
		return nil, NewAuthRequiredError("create_archive")
	}

	// Same normalization as ResolveBotName, so the stored token is the one that was checked.
	sealed, err := s.sealer.Seal(strings.TrimSpace(in.APIKey))
	if err != nil {
		s.logger.Error("credential sealing failed", "error", err, "user_id", userID)
		return nil, NewRemoteError("create_archive", "Failed to create chat archive", err)
	}

	created, err := s.archiveRepo.Create(ctx, &domain.ChatArchive{
		UserID:         userID,
		APIKey:         sealed,
		BotName:        optional(strings.TrimSpace(in.BotName)),
		SenderChatID:   optional(strings.TrimSpace(in.SenderChatID)),
		ReceiverChatID: optional(strings.TrimSpace(in.ReceiverChatID)),
	})
	if err != nil {
		s.logger.Error("error creating chat archive", "error", err, "user_id", userID)
		return nil, NewRemoteError("create_archive", "Failed to create chat archive", err)
	}

	s.logger.Info("chat archive created", "archive_id", created.ID, "user_id", userID)
	return created, nil
}

// ListArchives returns the signed-in user's archives, newest first.
func (s *ArchiveService) ListArchives(ctx context.Context) ([]domain.ChatArchive, error) {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return nil, NewAuthRequiredError("list_archives")
	}

	archives, err := s.archiveRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("error loading chat archives", "error", err, "user_id", userID)
		return nil, NewRemoteError("list_archives", "Failed to load chat archives", err)
	}
	return archives, nil
}

// DeleteArchive issues a single delete for id. The list refreshes through the change feed.
func (s *ArchiveService) DeleteArchive(ctx context.Context, id string) error {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return NewAuthRequiredError("delete_archive")
	}

	if err := s.archiveRepo.Delete(ctx, id, userID); err != nil {
		s.logger.Error("error deleting chat archive", "error", err, "archive_id", id, "user_id", userID)
		if errors.Is(err, archive.ErrArchiveNotFound) {
			return NewNotFoundError("delete_archive", "Archive not found", err)
		}
		return NewRemoteError("delete_archive", "Failed to delete archive", err)
	}

	s.logger.Info("chat archive deleted", "archive_id", id, "user_id", userID)
	return nil
}
