package handlers

import (
	"net/http"

	"github.com/iyunix/go-chatarchive/internal/dtos"
	"github.com/iyunix/go-chatarchive/internal/notify"
	"github.com/iyunix/go-chatarchive/internal/preferences"
	"github.com/iyunix/go-chatarchive/internal/services/archive_services"
)

// ProfileHandler reads and writes the operator's chat id cookie.
type ProfileHandler struct {
	profile       *archive_services.ProfileService
	secureCookies bool
}

func NewProfileHandler(profile *archive_services.ProfileService, secureCookies bool) *ProfileHandler {
	return &ProfileHandler{profile: profile, secureCookies: secureCookies}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.NewCookieStore(w, r, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_chat_id": h.profile.Load(prefs)})
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dtos.ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeNotice(w, http.StatusBadRequest, notify.Error("Invalid request body"))
		return
	}
	if err := dtos.Validate(req); err != nil {
		writeNotice(w, http.StatusBadRequest, notify.Error(err.Error()))
		return
	}

	prefs := preferences.NewCookieStore(w, r, h.secureCookies)
	if err := h.profile.Save(prefs, req.UserChatID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_chat_id": h.profile.Load(prefs),
		"notification": notify.Success("Profile updated"),
	})
}
