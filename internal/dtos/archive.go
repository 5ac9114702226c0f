// Package dtos shapes archive data for API responses and validates request payloads.
package dtos

import (
	"bytes"
	"strconv"
	"time"

	"github.com/yuin/goldmark"

	"github.com/iyunix/go-chatarchive/internal/domain"
)

const (
	MaskedCredential = "••••••••"
	EmptyCell        = "—"
	NoMessagesText   = "No messages yet"
)

// ArchiveRow is one line of the archive list. The credential is never included.
type ArchiveRow struct {
	ID               string `json:"id"`
	APIKey           string `json:"api_key"`
	BotName          string `json:"bot_name"`
	SenderChatID     string `json:"sender_chat_id"`
	ReceiverChatID   string `json:"receiver_chat_id"`
	MessagesChecked  int64  `json:"messages_checked"`
	LastMessageID    string `json:"last_message_id"`
	CurrentMessageID string `json:"current_message_id"`
	CreatedAt        string `json:"created_at"`
}

func NewArchiveRow(a domain.ChatArchive) ArchiveRow {
	row := ArchiveRow{
		ID:               a.ID,
		APIKey:           MaskedCredential,
		BotName:          orDash(a.BotName),
		SenderChatID:     orDash(a.SenderChatID),
		ReceiverChatID:   orDash(a.ReceiverChatID),
		LastMessageID:    intOrDash(a.LastMessageID),
		CurrentMessageID: intOrDash(a.CurrentMessageID),
		CreatedAt:        EmptyCell,
	}
	if a.MessagesChecked != nil {
		row.MessagesChecked = *a.MessagesChecked
	}
	if a.CreatedAt != nil {
		row.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return row
}

func NewArchiveRows(archives []domain.ChatArchive) []ArchiveRow {
	rows := make([]ArchiveRow, 0, len(archives))
	for _, a := range archives {
		rows = append(rows, NewArchiveRow(a))
	}
	return rows
}

// MessageView is one archived message as shown in the viewer dialog.
type MessageView struct {
	ID          string `json:"id"`
	MessageID   int64  `json:"message_id"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
}

// MessageList is either the messages in ascending order or the empty-state text.
type MessageList struct {
	ArchiveID string        `json:"archive_id"`
	Empty     bool          `json:"empty"`
	EmptyText string        `json:"empty_text,omitempty"`
	Messages  []MessageView `json:"messages,omitempty"`
}

// NewMessageList renders message content as markdown. Raw HTML in content is
// dropped by the renderer.
func NewMessageList(archiveID string, messages []domain.MessageArchive) (*MessageList, error) {
	if len(messages) == 0 {
		return &MessageList{ArchiveID: archiveID, Empty: true, EmptyText: NoMessagesText}, nil
	}

	list := &MessageList{ArchiveID: archiveID, Messages: make([]MessageView, 0, len(messages))}
	md := goldmark.New()
	for _, m := range messages {
		var buf bytes.Buffer
		if err := md.Convert([]byte(m.MessageContent), &buf); err != nil {
			return nil, err
		}
		list.Messages = append(list.Messages, MessageView{
			ID:          m.ID,
			MessageID:   m.MessageID,
			Content:     m.MessageContent,
			ContentHTML: buf.String(),
		})
	}
	return list, nil
}

// FormState mirrors the four archive form fields.
type FormState struct {
	APIKey         string `json:"api_key"`
	BotName        string `json:"bot_name"`
	SenderChatID   string `json:"sender_chat_id"`
	ReceiverChatID string `json:"receiver_chat_id"`
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return EmptyCell
	}
	return *s
}

func intOrDash(v *int64) string {
	if v == nil {
		return EmptyCell
	}
	return strconv.FormatInt(*v, 10)
}
