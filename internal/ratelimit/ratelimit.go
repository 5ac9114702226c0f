// Package ratelimit counts sign-in attempts per client and bans clients that exceed the window.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type Config struct {
	WindowSize    time.Duration
	MaxAttempts   int
	CleanupPeriod time.Duration
	BanDuration   time.Duration
}

// DefaultAuthConfig allows five attempts per fifteen minutes.
func DefaultAuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   5,
		CleanupPeriod: 30 * time.Minute,
		BanDuration:   30 * time.Minute,
	}
}

type attemptRecord struct {
	count     int
	firstSeen time.Time
	bannedAt  *time.Time
}

// Info describes the limiter's decision for one attempt.
type Info struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

type MemoryRateLimiter struct {
	config   *Config
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow records one attempt by identifier.
func (rl *MemoryRateLimiter) Allow(identifier string) *Info {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rec, ok := rl.attempts[identifier]
	if ok && rec.bannedAt != nil {
		if left := rl.config.BanDuration - now.Sub(*rec.bannedAt); left > 0 {
			return &Info{ResetTime: rec.bannedAt.Add(rl.config.BanDuration), RetryAfter: left, Banned: true}
		}
	}
	if !ok || now.Sub(rec.firstSeen) > rl.config.WindowSize || rec.bannedAt != nil {
		rec = &attemptRecord{firstSeen: now}
		rl.attempts[identifier] = rec
	}

	rec.count++
	if rec.count > rl.config.MaxAttempts {
		rec.bannedAt = &now
		return &Info{ResetTime: now.Add(rl.config.BanDuration), RetryAfter: rl.config.BanDuration, Banned: true}
	}
	return &Info{
		Allowed:   true,
		Remaining: rl.config.MaxAttempts - rec.count,
		ResetTime: rec.firstSeen.Add(rl.config.WindowSize),
	}
}

// RecordSuccess forgets every attempt by identifier.
func (rl *MemoryRateLimiter) RecordSuccess(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, identifier)
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, rec := range rl.attempts {
		if rec.bannedAt != nil {
			if now.Sub(*rec.bannedAt) > rl.config.BanDuration {
				delete(rl.attempts, id)
			}
			continue
		}
		if now.Sub(rec.firstSeen) > rl.config.WindowSize {
			delete(rl.attempts, id)
		}
	}
}

func (rl *MemoryRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GetClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func GetClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
