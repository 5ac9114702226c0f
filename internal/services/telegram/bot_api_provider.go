package telegram

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPIProvider talks to the Bot API through go-telegram-bot-api. A client is
// built per call because every archive carries its own token.
type BotAPIProvider struct {
	config *Config
	client *http.Client
	logger Logger
}

type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

func NewBotAPIProvider(config *Config, logger Logger) (*BotAPIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, &GatewayError{Type: ErrTypeConfig, Method: "init", Message: err.Error()}
	}
	return &BotAPIProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

// GetMe resolves the bot identity for token.
func (p *BotAPIProvider) GetMe(ctx context.Context, token string) (*BotIdentity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &GatewayError{Type: ErrTypeValidation, Method: "getMe", Message: "bot token is empty"}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, p.config.Endpoint, p.contextClient(ctx))
	if err != nil {
		return nil, p.classify("getMe", err)
	}

	p.logger.Debug("bot identity resolved", "bot", bot.Self.UserName)
	return &BotIdentity{ID: bot.Self.ID, Username: bot.Self.UserName}, nil
}

// ForwardMessage calls forwardMessage. Chat ids are passed through verbatim so
// both numeric ids and @channel usernames work.
func (p *BotAPIProvider) ForwardMessage(ctx context.Context, req ForwardRequest) error {
	switch {
	case strings.TrimSpace(req.Token) == "":
		return &GatewayError{Type: ErrTypeValidation, Method: "forwardMessage", Message: "bot token is empty"}
	case req.ToChatID == "" || req.FromChatID == "":
		return &GatewayError{Type: ErrTypeValidation, Method: "forwardMessage", Message: "source and destination chat ids are required"}
	}

	bot := &tgbotapi.BotAPI{Token: req.Token, Client: p.contextClient(ctx), Debug: p.config.Debug}
	bot.SetAPIEndpoint(p.config.Endpoint)

	// The Bot API documents a JSON body with a numeric message_id. MakeRequest posts
	// form fields instead, which the API accepts with the same meaning.
	params := tgbotapi.Params{
		"chat_id":      req.ToChatID,
		"from_chat_id": req.FromChatID,
		"message_id":   strconv.FormatInt(req.MessageID, 10),
	}
	if _, err := bot.MakeRequest("forwardMessage", params); err != nil {
		return p.classify("forwardMessage", err)
	}
	return nil
}

func (p *BotAPIProvider) classify(method string, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		p.logger.Warn("telegram rejected request", "method", method, "code", apiErr.Code, "description", apiErr.Message)
		return &GatewayError{Type: ErrTypeProvider, Method: method, Code: apiErr.Code, Message: apiErr.Message}
	}
	p.logger.Warn("telegram request failed", "method", method, "error", err)
	return &GatewayError{Type: ErrTypeNetwork, Method: method, Message: "request failed", Cause: err}
}

func (p *BotAPIProvider) contextClient(ctx context.Context) tgbotapi.HTTPClient {
	return &contextClient{ctx: ctx, inner: p.client}
}

// contextClient binds outgoing requests to the caller's context; the library
// builds its requests without one.
type contextClient struct {
	ctx   context.Context
	inner *http.Client
}

func (c *contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.inner.Do(req.WithContext(c.ctx))
}
