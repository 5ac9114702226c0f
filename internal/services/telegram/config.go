package telegram

import (
	"fmt"
	"strings"
	"time"
)

// DefaultEndpoint is the public Bot API; the two verbs are the token and the method.
const DefaultEndpoint = "https://api.telegram.org/bot%s/%s"

type Config struct {
	// Endpoint is a format string taking the bot token and the method name.
	Endpoint string
	Timeout  time.Duration
	Debug    bool
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("TELEGRAM_API_ENDPOINT is required")
	}
	if strings.Count(c.Endpoint, "%s") != 2 {
		return fmt.Errorf("TELEGRAM_API_ENDPOINT must contain two %%s verbs (token, method)")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("telegram timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Timeout:  15 * time.Second,
	}
}
