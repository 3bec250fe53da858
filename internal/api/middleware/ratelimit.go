package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────────────────
// Token Bucket Rate Limiter
// ──────────────────────────────────────────────────────────────────────────────

// clientBucket tracks one client's remaining allowance.
type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

// ipLimiter is a per-IP token bucket map guarded by a single mutex.  With a
// per-request critical section this small, contention is not a concern at the
// request rates a single instance serves.
type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rate    float64 // tokens per second
	burst   float64 // maximum token capacity
}

// newIPLimiter creates a limiter with the given requests-per-second allowance.
// Burst capacity is max(10, rate) so short spikes are absorbed.
func newIPLimiter(rps int) *ipLimiter {
	burst := float64(rps)
	if burst < 10 {
		burst = 10
	}
	return &ipLimiter{
		clients: make(map[string]*clientBucket),
		rate:    float64(rps),
		burst:   burst,
	}
}

// allow refills the key's bucket for the elapsed time and deducts one token.
// Returns false when the bucket is empty.
func (l *ipLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.clients[key]
	if !ok {
		b = &clientBucket{tokens: l.burst, lastSeen: now}
		l.clients[key] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evictStale drops buckets idle longer than maxIdle so the map stays bounded.
func (l *ipLimiter) evictStale(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for key, b := range l.clients {
		if b.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// RateLimitMiddleware returns a gin.HandlerFunc that enforces a per-IP token
// bucket rate limit of rps requests per second.  Clients exceeding the limit
// receive 429 Too Many Requests.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	l := newIPLimiter(rps)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			l.evictStale(10 * time.Minute)
		}
	}()

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please slow down",
			})
			return
		}
		c.Next()
	}
}
