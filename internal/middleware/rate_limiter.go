package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"multipos/internal/apierror"
)

// ── Fixed-window rate limiter ─────────────────────────────────────────────────

type windowEntry struct {
	count     int
	windowEnd time.Time
}

// WindowLimiter counts requests per client IP in fixed windows.
type WindowLimiter struct {
	limit   int
	window  time.Duration
	message string

	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

func NewWindowLimiter(limit int, window time.Duration, message string) *WindowLimiter {
	return &WindowLimiter{
		limit:   limit,
		window:  window,
		message: message,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Allow records one hit for key and reports whether it is within the limit,
// plus the end of the current window.
func (l *WindowLimiter) Allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Middleware rejects over-limit clients with 429.
func (l *WindowLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// Purge drops expired entries and returns how many were removed.
func (l *WindowLimiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	purged := 0
	for key, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, key)
			purged++
		}
	}
	return purged
}

// StartPurge runs Purge every interval until stop is closed.
func (l *WindowLimiter) StartPurge(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := l.Purge(); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() *WindowLimiter {
	return NewWindowLimiter(20, time.Minute, "too many login attempts, try again in a minute")
}

// APIRateLimiter is the general per-IP limiter for the whole API.
func APIRateLimiter(limit int, window time.Duration) *WindowLimiter {
	return NewWindowLimiter(limit, window, "too many requests, try again shortly")
}
