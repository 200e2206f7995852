package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a caller's bucket survives without traffic
const DefaultIdleTTL = 5 * time.Minute

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller key (client IP or user id).
// Buckets idle for longer than the TTL are swept until the context passed to
// NewRateLimiter is cancelled.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	done    chan struct{}
}

// NewRateLimiter allows perMinute requests per caller with the given burst.
func NewRateLimiter(ctx context.Context, perMinute, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.sweepUntil(ctx)
	return rl
}

// Allow spends one token from key's bucket
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = rl.now()
	return b.tokens.Allow()
}

// Len reports how many callers currently hold a bucket
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Done is closed once the sweeper has stopped
func (rl *RateLimiter) Done() <-chan struct{} {
	return rl.done
}

func (rl *RateLimiter) sweepUntil(ctx context.Context) {
	defer close(rl.done)

	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// PerIP rejects clients that exceed perMinute requests from one address
func PerIP(ctx context.Context, perMinute, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(ctx, perMinute, burst)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// PerUser rejects a companion user sending more than perMinute messages.
// It must run after UserIdentity.
func PerUser(ctx context.Context, perMinute, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(ctx, perMinute, burst)

	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		if !limiter.Allow(strconv.FormatInt(userID, 10)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

// WebSocketLimiter throttles messages on a single chat socket
type WebSocketLimiter struct {
	limiter *rate.Limiter
}

// NewWebSocketLimiter allows a burst of messagesPerMinute, refilled over a minute
func NewWebSocketLimiter(messagesPerMinute int) *WebSocketLimiter {
	return &WebSocketLimiter{
		limiter: rate.NewLimiter(rate.Limit(messagesPerMinute)/60.0, messagesPerMinute),
	}
}

func (wsl *WebSocketLimiter) Allow() bool {
	return wsl.limiter.Allow()
}
