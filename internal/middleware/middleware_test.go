package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatarchive/internal/ratelimit"
	"github.com/iyunix/go-chatarchive/internal/services"
)

type stubValidator map[string]uint

func (s stubValidator) ValidateJWTToken(token string) (uint, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte{byte('0' + id)})
	})
}

func TestJWTMiddlewareRedirectsWithoutCookie(t *testing.T) {
	h := NewJWTMiddleware(stubValidator{}, &services.NoOpLogger{})(echoUser(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestJWTMiddlewarePlacesUserOnContext(t *testing.T) {
	h := NewJWTMiddleware(stubValidator{"good": 7}, &services.NoOpLogger{})(echoUser(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "good"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Body.String())
}

func TestAPIAuthMiddlewareAnswers401AndClearsBadCookie(t *testing.T) {
	h := NewAPIAuthMiddleware(stubValidator{}, &services.NoOpLogger{})(echoUser(t))

	req := httptest.NewRequest(http.MethodGet, "/api/archives", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please sign in to continue")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), AuthCookieName+"=;")
}

func TestUserIDFromContextRejectsZero(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(WithUserID(req.Context(), 0))
	assert.False(t, ok)
}

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(&services.NoOpLogger{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitMiddlewareBlocksRepeatedFailures(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize: 60e9, MaxAttempts: 2, CleanupPeriod: 60e9, BanDuration: 60e9,
	})
	defer limiter.Close()
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := RateLimitMiddleware(limiter, "login", &services.NoOpLogger{})(failing)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{401, 401, 429}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "GET passes through")
}
