package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters hands out one token bucket per client IP. Entries are never
// evicted; the dashboard serves a small fixed staff population.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	r       rate.Limit
	burst   int
}

func newClientLimiters(r rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*rate.Limiter),
		r:       r,
		burst:   burst,
	}
}

func (l *clientLimiters) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.clients[ip]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.burst)
		l.clients[ip] = limiter
	}
	return limiter
}

// RateLimiter rejects clients that exceed r requests per second with bursts
// of b, tracked per IP.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiters := newClientLimiters(r, b)
	return func(c *gin.Context) {
		if !limiters.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
