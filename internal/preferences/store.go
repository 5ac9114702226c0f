// Package preferences holds per-browser settings that never reach the database.
package preferences

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// KeyUserChatID is the operator's own chat id, the destination of forwarded messages.
const KeyUserChatID = "userChatId"

// cookieLifetime stands in for "no expiry".
const cookieLifetime = 10 * 365 * 24 * time.Hour

type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// CookieStore keeps preferences in browser cookies scoped to one request/response pair.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
	// written shadows values set during this request so a later Get sees them.
	written map[string]string
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, secure: secure, written: make(map[string]string)}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		return v, v != ""
	}
	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *CookieStore) Set(key, value string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Expires:  time.Now().Add(cookieLifetime),
		MaxAge:   int(cookieLifetime.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = value
	return nil
}

// MemoryStore is a map-backed Store, used by tests and the diagnostic CLI.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok && v != ""
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
