package dtos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatarchive/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestNewArchiveRowMasksAndDefaults(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := NewArchiveRow(domain.ChatArchive{
		ID:              "a1",
		APIKey:          "123:abc",
		BotName:         ptr("helper_bot"),
		SenderChatID:    ptr("777"),
		MessagesChecked: ptr(int64(3)),
		CreatedAt:       &created,
	})

	assert.Equal(t, MaskedCredential, row.APIKey)
	assert.Equal(t, "helper_bot", row.BotName)
	assert.Equal(t, "777", row.SenderChatID)
	assert.Equal(t, EmptyCell, row.ReceiverChatID)
	assert.Equal(t, int64(3), row.MessagesChecked)
	assert.Equal(t, EmptyCell, row.LastMessageID)
	assert.Equal(t, "2026-03-01T12:00:00Z", row.CreatedAt)
}

func TestNewArchiveRowNullsRenderAsDashAndZero(t *testing.T) {
	row := NewArchiveRow(domain.ChatArchive{ID: "a2", APIKey: "k", BotName: ptr("")})
	assert.Equal(t, EmptyCell, row.BotName)
	assert.Equal(t, EmptyCell, row.SenderChatID)
	assert.Zero(t, row.MessagesChecked)
	assert.Equal(t, EmptyCell, row.CreatedAt)
}

func TestNewArchiveRowsNeverNil(t *testing.T) {
	rows := NewArchiveRows(nil)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestNewMessageListEmpty(t *testing.T) {
	list, err := NewMessageList("a1", nil)
	require.NoError(t, err)
	assert.True(t, list.Empty)
	assert.Equal(t, NoMessagesText, list.EmptyText)
	assert.Empty(t, list.Messages)
}

func TestNewMessageListRendersContent(t *testing.T) {
	list, err := NewMessageList("a1", []domain.MessageArchive{
		{ID: "m1", MessageID: 1, MessageContent: "**hi**"},
		{ID: "m2", MessageID: 2, MessageContent: "<script>x</script>"},
	})
	require.NoError(t, err)
	require.Len(t, list.Messages, 2)
	assert.False(t, list.Empty)
	assert.Contains(t, list.Messages[0].ContentHTML, "<strong>hi</strong>")
	assert.NotContains(t, list.Messages[1].ContentHTML, "<script>")
	assert.Equal(t, "<script>x</script>", list.Messages[1].Content)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(CreateArchiveRequest{}))

	long := make([]byte, 65)
	for i := range long {
		long[i] = '1'
	}
	err := Validate(CreateArchiveRequest{SenderChatID: string(long)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "senderchatid must be at most 64")

	err = Validate(RegisterRequest{Username: "operator", Password: "longenough", ConfirmPassword: "other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	assert.Error(t, Validate(LogRequest{Level: "trace", Message: "x"}))
}
