package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/response"
)

// RateLimiter throttles requests per client IP with a token bucket that
// refills continuously. Buckets idle for several intervals are evicted.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	burst   float64
	// refillPerSec is how many tokens a bucket gains each second.
	refillPerSec float64
	interval     time.Duration
}

type bucket struct {
	tokens  float64
	updated time.Time
}

// NewRateLimiter allows up to rate requests per interval from a single IP.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:      make(map[string]*bucket),
		burst:        float64(rate),
		refillPerSec: float64(rate) / interval.Seconds(),
		interval:     interval,
	}
	go rl.evictLoop()
	return rl
}

// Middleware returns the Gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(rl.interval.Seconds())))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.burst, updated: now}
		rl.buckets[ip] = b
	} else {
		b.tokens += now.Sub(b.updated).Seconds() * rl.refillPerSec
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
		b.updated = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-3 * rl.interval)
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if b.updated.Before(cutoff) {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
