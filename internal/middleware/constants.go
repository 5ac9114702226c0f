package middleware

type contextKey string

const (
	UserIDKey contextKey = "user_id"

	// AuthCookieName carries the session JWT.
	AuthCookieName = "auth_token"
)

// Logger is the subset of the service logger the middleware writes to.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
