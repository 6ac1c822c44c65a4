package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// PerUserLimiter keeps a token bucket per user ID and evicts entries that
// have been idle for a while so the map does not grow without bound.
type PerUserLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*userLimiter
	stopCh   chan struct{}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewPerUserLimiter(perMinute int, burst int) *PerUserLimiter {
	l := &PerUserLimiter{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop(5 * time.Minute)
	return l
}

func (l *PerUserLimiter) Stop() {
	close(l.stopCh)
}

// Allow reports whether the user may make another request now.
func (l *PerUserLimiter) Allow(userID string) bool {
	l.mu.Lock()
	ul, ok := l.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = ul
	}
	ul.lastAccess = time.Now()
	l.mu.Unlock()

	return ul.limiter.Allow()
}

// Count returns the number of tracked users. Exposed for tests.
func (l *PerUserLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects requests over the per-user budget with 429.
// Must run after the auth middleware so userID is set.
func (l *PerUserLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.Next()
			return
		}
		if !l.Allow(userID) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func (l *PerUserLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(interval * 2)
		case <-l.stopCh:
			return
		}
	}
}

func (l *PerUserLimiter) cleanup(ttl time.Duration) {
	now := time.Now()
	l.mu.Lock()
	for id, ul := range l.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(l.limiters, id)
		}
	}
	l.mu.Unlock()
}
