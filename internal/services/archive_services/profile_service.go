package archive_services

import (
	"strings"

	"github.com/iyunix/go-chatarchive/internal/preferences"
)

// ProfileService edits the operator's own chat id. The value lives only in the
// browser's preference store.
type ProfileService struct {
	logger Logger
}

func NewProfileService(logger Logger) *ProfileService {
	return &ProfileService{logger: logger}
}

// Load returns the stored chat id, or "" when unset.
func (s *ProfileService) Load(prefs preferences.Store) string {
	v, _ := prefs.Get(preferences.KeyUserChatID)
	return v
}

func (s *ProfileService) Save(prefs preferences.Store, chatID string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return NewValidationError("save_profile", "Enter your chat ID")
	}
	if err := prefs.Set(preferences.KeyUserChatID, chatID); err != nil {
		s.logger.Error("profile not saved", "error", err)
		return NewRemoteError("save_profile", "Failed to save profile", err)
	}
	return nil
}
