// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	JWTSecretKey string
	Environment  string

	// Archive store. DatabaseURL selects postgres; otherwise SQLitePath is used.
	DatabaseURL string
	SQLitePath  string

	// Change feed fan-out between instances. Empty RedisURL keeps the feed in-process.
	RedisURL     string
	RedisChannel string

	TelegramAPIEndpoint string
	TelegramTimeout     time.Duration
	ValidationDebounce  time.Duration

	// CredentialKey seals stored bot tokens. Required in production.
	CredentialKey string

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		JWTSecretKey:        getEnv("JWT_SECRET_KEY", ""),
		Environment:         env,
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SQLitePath:          getEnv("SQLITE_PATH", "chatarchive.db"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisChannel:        getEnv("REDIS_CHANNEL", "archive-changes"),
		TelegramAPIEndpoint: getEnv("TELEGRAM_API_ENDPOINT", "https://api.telegram.org/bot%s/%s"),
		TelegramTimeout:     time.Duration(getEnvAsInt("TELEGRAM_TIMEOUT_SECONDS", 15)) * time.Second,
		ValidationDebounce:  time.Duration(getEnvAsInt("VALIDATION_DEBOUNCE_MS", 500)) * time.Millisecond,
		CredentialKey:       getEnv("CREDENTIAL_KEY", ""),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
		LogFile:             getEnv("LOG_FILE", ""),
	}

	if cfg.IsProduction() {
		if missing := cfg.missingProductionKeys(); len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	} else if cfg.JWTSecretKey == "" {
		log.Println("Warning: JWT_SECRET_KEY not set, using an insecure development secret")
		cfg.JWTSecretKey = "dev-only-insecure-secret"
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

func (c *Config) missingProductionKeys() []string {
	missing := []string{}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.CredentialKey == "" {
		missing = append(missing, "CREDENTIAL_KEY")
	}
	return missing
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
