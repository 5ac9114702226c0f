package telegram

import "context"

// BotIdentity is what getMe tells us about the bot behind a token.
type BotIdentity struct {
	ID       int64
	Username string
}

// ForwardRequest moves one message from a source chat to a destination chat.
type ForwardRequest struct {
	Token      string
	ToChatID   string
	FromChatID string
	MessageID  int64
}

type Gateway interface {
	GetMe(ctx context.Context, token string) (*BotIdentity, error)
	ForwardMessage(ctx context.Context, req ForwardRequest) error
}
