package message

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatarchive/internal/domain"
	"github.com/iyunix/go-chatarchive/internal/testutil"
)

func TestFindByArchiveIDAscending(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	testutil.SeedArchive(t, db, domain.ChatArchive{ID: "a1", UserID: 1, APIKey: "k"})
	for _, id := range []int64{30, 10, 20} {
		testutil.SeedMessage(t, db, "a1", id, "m")
	}
	testutil.SeedMessage(t, db, "other", 5, "not mine")

	messages, err := repo.FindByArchiveID(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, int64(10), messages[0].MessageID)
	assert.Equal(t, int64(20), messages[1].MessageID)
	assert.Equal(t, int64(30), messages[2].MessageID)
}

func TestFindByArchiveIDEmpty(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)

	messages, err := repo.FindByArchiveID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	_, err = repo.FindByArchiveID(context.Background(), "")
	assert.Error(t, err)
}

func TestFindByArchiveAndMessageID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	testutil.SeedMessage(t, db, "a1", 3, "three")

	msg, err := repo.FindByArchiveAndMessageID(context.Background(), "a1", 3)
	require.NoError(t, err)
	assert.Equal(t, "three", msg.MessageContent)

	_, err = repo.FindByArchiveAndMessageID(context.Background(), "a1", 4)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
