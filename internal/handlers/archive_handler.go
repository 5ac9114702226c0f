package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-chatarchive/internal/dtos"
	"github.com/iyunix/go-chatarchive/internal/middleware"
	"github.com/iyunix/go-chatarchive/internal/notify"
	"github.com/iyunix/go-chatarchive/internal/preferences"
	"github.com/iyunix/go-chatarchive/internal/services/archive_services"
)

type ArchiveHandler struct {
	archives      *archive_services.ArchiveService
	messages      *archive_services.MessageService
	logger        Logger
	secureCookies bool
}

func NewArchiveHandler(archives *archive_services.ArchiveService, messages *archive_services.MessageService, logger Logger, secureCookies bool) *ArchiveHandler {
	return &ArchiveHandler{archives: archives, messages: messages, logger: logger, secureCookies: secureCookies}
}

// ResolveBot validates a credential as it is typed. Only the last keystroke in a
// burst reaches the gateway; earlier requests answer superseded=true.
func (h *ArchiveHandler) ResolveBot(w http.ResponseWriter, r *http.Request) {
	var req dtos.ResolveBotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeNotice(w, http.StatusBadRequest, notify.Error("Invalid request body"))
		return
	}
	if err := dtos.Validate(req); err != nil {
		writeNotice(w, http.StatusBadRequest, notify.Error(err.Error()))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	res, err := h.archives.ResolveBotName(r.Context(), fmt.Sprintf("user:%d", userID), req.APIKey)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]interface{}{
			"bot_name":     "",
			"superseded":   false,
			"notification": errorNotice(err),
		})
		return
	}

	body := map[string]interface{}{"bot_name": res.BotName, "superseded": res.Superseded}
	if res.BotName != "" {
		body["notification"] = notify.Success("Bot found: @" + res.BotName)
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *ArchiveHandler) CreateArchive(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateArchiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeNotice(w, http.StatusBadRequest, notify.Error("Invalid request body"))
		return
	}
	if err := dtos.Validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"form":         req.Form(),
			"notification": notify.Error(err.Error()),
		})
		return
	}

	created, err := h.archives.CreateArchive(r.Context(), archive_services.CreateArchiveInput{
		APIKey:         req.APIKey,
		BotName:        req.BotName,
		SenderChatID:   req.SenderChatID,
		ReceiverChatID: req.ReceiverChatID,
	})
	if err != nil {
		writeJSON(w, statusFor(err), map[string]interface{}{
			"form":         req.Form(),
			"notification": errorNotice(err),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"archive":      dtos.NewArchiveRow(*created),
		"form":         dtos.FormState{},
		"notification": notify.Success("Chat archive created successfully"),
	})
}

func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := h.archives.ListArchives(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"archives": dtos.NewArchiveRows(archives)})
}

// DeleteArchive does not return the updated list; clients refresh from the live feed.
func (h *ArchiveHandler) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	if err := h.archives.DeleteArchive(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeNotice(w, http.StatusOK, notify.Success("Archive deleted"))
}

func (h *ArchiveHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	archiveID := mux.Vars(r)["id"]
	messages, err := h.messages.ListMessages(r.Context(), archiveID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	list, err := dtos.NewMessageList(archiveID, messages)
	if err != nil {
		h.logger.Error("message rendering failed", "error", err, "archive_id", archiveID)
		writeNotice(w, http.StatusInternalServerError, notify.Error("Failed to load messages"))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ForwardMessage forwards one archived message to the chat id stored in the caller's browser.
func (h *ArchiveHandler) ForwardMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	messageID, err := strconv.ParseInt(vars["messageID"], 10, 64)
	if err != nil {
		writeNotice(w, http.StatusBadRequest, notify.Error("Invalid message ID"))
		return
	}

	prefs := preferences.NewCookieStore(w, r, h.secureCookies)
	if err := h.messages.ForwardMessage(r.Context(), prefs, vars["id"], messageID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeNotice(w, http.StatusOK, notify.Success("Message forwarded"))
}

func (h *ArchiveHandler) ForwardHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.messages.ForwardHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"forwards": entries})
}
