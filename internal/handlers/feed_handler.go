package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iyunix/go-chatarchive/internal/changefeed"
	"github.com/iyunix/go-chatarchive/internal/dtos"
	"github.com/iyunix/go-chatarchive/internal/notify"
	"github.com/iyunix/go-chatarchive/internal/services/archive_services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// feedFrame is one websocket message of the live archive list.
type feedFrame struct {
	Type         string               `json:"type"`
	Archives     []dtos.ArchiveRow    `json:"archives"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

type FeedHandler struct {
	archives *archive_services.ArchiveService
	hub      *changefeed.Hub
	logger   Logger
	upgrader websocket.Upgrader

	// closing ends every open feed. http.Server.Shutdown does not touch hijacked connections.
	closing  context.Context
	shutdown context.CancelFunc
}

func NewFeedHandler(archives *archive_services.ArchiveService, hub *changefeed.Hub, logger Logger) *FeedHandler {
	closing, cancel := context.WithCancel(context.Background())
	return &FeedHandler{
		archives: archives,
		hub:      hub,
		logger:   logger,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		closing:  closing,
		shutdown: cancel,
	}
}

// Close sends a going-away frame to every open feed and refuses new ones.
// Register it with http.Server.RegisterOnShutdown.
func (h *FeedHandler) Close() {
	h.shutdown()
}

// ServeArchiveFeed streams the caller's archive list. A "loading" frame goes out
// first, then a snapshot, then a fresh snapshot after every change to the archive table.
func (h *FeedHandler) ServeArchiveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if h.closing.Err() != nil {
		h.goAway(conn)
		return
	}

	sub := h.hub.Subscribe(changefeed.TableArchives)
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.readPump(conn, cancel)

	if err := h.write(conn, feedFrame{Type: "loading"}); err != nil {
		return
	}
	if err := h.pushSnapshot(ctx, conn); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closing.Done():
			h.goAway(conn)
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			drain(sub.C)
			if err := h.pushSnapshot(ctx, conn); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the client going away.
func (h *FeedHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *FeedHandler) pushSnapshot(ctx context.Context, conn *websocket.Conn) error {
	archives, err := h.archives.ListArchives(ctx)
	if err != nil {
		h.logger.Error("archive feed query failed", "error", err)
		return h.write(conn, feedFrame{Type: "error", Notification: errorNotice(err)})
	}
	return h.write(conn, feedFrame{Type: "snapshot", Archives: dtos.NewArchiveRows(archives)})
}

func (h *FeedHandler) write(conn *websocket.Conn, frame feedFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func (h *FeedHandler) goAway(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// drain discards queued events; one snapshot covers them all.
func drain(c <-chan changefeed.Event) {
	for {
		select {
		case _, ok := <-c:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
