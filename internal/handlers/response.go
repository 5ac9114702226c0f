package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iyunix/go-chatarchive/internal/notify"
	"github.com/iyunix/go-chatarchive/internal/services/archive_services"
)

// Logger is the service logger as seen by the handlers.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeNotice answers with only a notification.
func writeNotice(w http.ResponseWriter, status int, n *notify.Notification) {
	writeJSON(w, status, map[string]interface{}{"notification": n})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var archiveErr *archive_services.ArchiveError
	if !errors.As(err, &archiveErr) {
		return http.StatusInternalServerError
	}
	switch archiveErr.Type {
	case archive_services.ErrTypeAuthRequired:
		return http.StatusUnauthorized
	case archive_services.ErrTypeValidation:
		return http.StatusBadRequest
	case archive_services.ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// errorNotice turns a service error into the notification shown to the user.
func errorNotice(err error) *notify.Notification {
	var archiveErr *archive_services.ArchiveError
	if errors.As(err, &archiveErr) {
		return notify.Error(archiveErr.Message)
	}
	return notify.Error("Something went wrong")
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeNotice(w, statusFor(err), errorNotice(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	return dec.Decode(dst)
}
