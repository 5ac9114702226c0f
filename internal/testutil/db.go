// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-chatarchive/internal/domain"
)

// NewTestDB opens a private in-memory database with the full schema migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, domain.Migrate(db))
	return db
}

// SeedArchive inserts an archive row directly, bypassing services.
func SeedArchive(t *testing.T, db *gorm.DB, a domain.ChatArchive) domain.ChatArchive {
	t.Helper()
	if a.CreatedAt == nil {
		now := time.Now().UTC()
		a.CreatedAt = &now
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

// SeedMessage inserts a message row as the ingestion worker would.
func SeedMessage(t *testing.T, db *gorm.DB, archiveID string, messageID int64, content string) domain.MessageArchive {
	t.Helper()
	m := domain.MessageArchive{ChatArchiveID: &archiveID, MessageID: messageID, MessageContent: content}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
