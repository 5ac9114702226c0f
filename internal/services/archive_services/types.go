package archive_services

import "context"

// Logger interface for the archive services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SessionProvider reports the signed-in user, if any.
type SessionProvider interface {
	CurrentUserID(ctx context.Context) (uint, bool)
}

// SessionFunc adapts a plain function to SessionProvider.
type SessionFunc func(ctx context.Context) (uint, bool)

func (f SessionFunc) CurrentUserID(ctx context.Context) (uint, bool) { return f(ctx) }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
