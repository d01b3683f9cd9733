package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// InMemoryRateLimiter limits requests per key (e.g. IP) in a sliding window.
type InMemoryRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	stop     chan struct{}
	once     sync.Once
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	r := &InMemoryRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
	}
	go r.cleanup()
	return r
}

func (r *InMemoryRateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	valid := r.prune(r.requests[key], now.Add(-r.window))
	if len(valid) >= r.limit {
		r.requests[key] = valid
		return false
	}
	r.requests[key] = append(valid, now)
	return true
}

// Stop ends the background cleanup.
func (r *InMemoryRateLimiter) Stop() {
	r.once.Do(func() { close(r.stop) })
}

func (r *InMemoryRateLimiter) prune(times []time.Time, cutoff time.Time) []time.Time {
	var valid []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}

func (r *InMemoryRateLimiter) cleanup() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-tick.C:
		}
		r.mu.Lock()
		cutoff := time.Now().Add(-r.window)
		for k, times := range r.requests {
			if valid := r.prune(times, cutoff); len(valid) == 0 {
				delete(r.requests, k)
			} else {
				r.requests[k] = valid
			}
		}
		r.mu.Unlock()
	}
}

// RateLimit returns a middleware that limits by client IP.
func RateLimit(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
