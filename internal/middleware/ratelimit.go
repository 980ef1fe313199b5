package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// SlidingWindowLimiter counts requests per key inside a rolling window.
// Keys are whatever the caller hands in, typically client IP or IP+path.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	limit   int
	window  time.Duration
	stopped chan struct{}
}

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		hits:    make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		stopped: make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	kept := l.prune(key, now)
	if len(kept) >= l.limit {
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// prune drops hits older than the window. Caller holds the lock.
func (l *SlidingWindowLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	hits := l.hits[key]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

func (l *SlidingWindowLimiter) sweep() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-l.stopped:
			return
		case <-tick.C:
			l.mu.Lock()
			now := time.Now()
			for k := range l.hits {
				if kept := l.prune(k, now); len(kept) == 0 {
					delete(l.hits, k)
				} else {
					l.hits[k] = kept
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *SlidingWindowLimiter) Stop() {
	close(l.stopped)
}

// RateLimit limits by client IP across all routes it wraps.
func RateLimit(limiter *SlidingWindowLimiter) gin.HandlerFunc {
	return RateLimitBy(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitBy limits using a caller-supplied key function. Auth routes
// use IP+path so a login brute-force cannot starve the rest of the API.
func RateLimitBy(limiter *SlidingWindowLimiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFn(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
