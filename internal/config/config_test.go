package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("VALIDATION_DEBOUNCE_MS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 500*time.Millisecond, cfg.ValidationDebounce)
	assert.Equal(t, "archive-changes", cfg.RedisChannel)
	assert.NotEmpty(t, cfg.JWTSecretKey, "development falls back to a local secret")
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("VALIDATION_DEBOUNCE_MS", "250")
	t.Setenv("TELEGRAM_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.JWTSecretKey)
	assert.Equal(t, 250*time.Millisecond, cfg.ValidationDebounce)
	assert.Equal(t, 15*time.Second, cfg.TelegramTimeout)
}

func TestMissingProductionKeys(t *testing.T) {
	cfg := &Config{Environment: "production", JWTSecretKey: "x"}
	assert.ElementsMatch(t, []string{"DATABASE_URL", "CREDENTIAL_KEY"}, cfg.missingProductionKeys())
}
