package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pkordes/trainline/internal/metrics"
)

// idleLimiterTTL is how long a client may stay silent before its limiter is
// dropped.
const idleLimiterTTL = 10 * time.Minute

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP. Wire it after
// chimiddleware.RealIP so proxied clients are told apart.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*rateLimitClient
	limit    rate.Limit
	burst    int
	metrics  *metrics.Metrics
	now      func() time.Time
	lastSweep time.Time
}

// NewRateLimiter allows each client rps requests per second with a burst of
// the same size. rps <= 0 disables limiting. m may be nil.
func NewRateLimiter(rps int, m *metrics.Metrics) *RateLimiter {
	rl := &RateLimiter{
		clients: map[string]*rateLimitClient{},
		limit:   rate.Inf,
		burst:   rps,
		metrics: m,
		now:     time.Now,
	}
	if rps > 0 {
		rl.limit = rate.Limit(rps)
	}
	rl.lastSweep = rl.now()
	return rl
}

// Handler returns the HTTP middleware.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl.limit == rate.Inf {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			rl.metrics.RateLimited()
			// Limits are whole requests per second, so a token is back within a second.
			w.Header().Set("Retry-After", "1")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= idleLimiterTTL {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) >= idleLimiterTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &rateLimitClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
