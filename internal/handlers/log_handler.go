package handlers

import (
	"net/http"

	"github.com/iyunix/go-chatarchive/internal/dtos"
)

// LogHandler is the server side of the browser's diagnostic console.
type LogHandler struct {
	logger Logger
}

func NewLogHandler(logger Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogFrontendEvent writes a browser log line through the service logger.
func (h *LogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload dtos.LogRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := dtos.Validate(payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kv := []interface{}{"source", "browser", "context", payload.Context}
	switch payload.Level {
	case "error":
		h.logger.Error(payload.Message, kv...)
	case "warn":
		h.logger.Warn(payload.Message, kv...)
	case "debug":
		h.logger.Debug(payload.Message, kv...)
	default:
		h.logger.Info(payload.Message, kv...)
	}
	w.WriteHeader(http.StatusNoContent)
}
