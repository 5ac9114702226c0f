package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iyunix/go-chatarchive/internal/notify"
)

// TokenValidator resolves a session token to a user id.
type TokenValidator interface {
	ValidateJWTToken(token string) (uint, error)
}

// UserIDFromContext returns the signed-in user placed on ctx by the auth middleware.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok && id != 0
}

// WithUserID is used by the auth middleware and by handler tests.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// NewJWTMiddleware guards pages: requests without a valid auth_token cookie are sent to /login.
func NewJWTMiddleware(auth TokenValidator, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sessionUser(w, r, auth, logger)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// NewAPIAuthMiddleware guards JSON endpoints: a missing session answers 401
// with an error notification instead of a redirect.
func NewAPIAuthMiddleware(auth TokenValidator, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sessionUser(w, r, auth, logger)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"notification": notify.Error("Please sign in to continue"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func sessionUser(w http.ResponseWriter, r *http.Request, auth TokenValidator, logger Logger) (uint, bool) {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}

	userID, err := auth.ValidateJWTToken(cookie.Value)
	if err != nil {
		logger.Warn("invalid session token", "path", r.URL.Path, "error", err)
		ClearAuthCookie(w, r)
		return 0, false
	}
	return userID, true
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
