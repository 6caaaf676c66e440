package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Limiter is a simple token bucket keyed by client IP
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket // per-IP buckets
	max     int                // tokens per window
	per     time.Duration      // window size
}

type bucket struct {
	ts     time.Time // window start
	tokens int       // remaining tokens
}

// New creates a new IP-based limiter allowing max requests per window
func New(max int, per time.Duration) *Limiter {
	return &Limiter{buckets: map[string]*bucket{}, max: max, per: per}
}

// Allow reports whether a request from ip fits in the current window.
func (r *Limiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.buckets[ip]
	if b == nil || time.Since(b.ts) > r.per {
		// Start a new window; prune dead buckets occasionally
		if len(r.buckets) > 10000 {
			r.prune()
		}
		b = &bucket{ts: time.Now(), tokens: r.max}
		r.buckets[ip] = b
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// prune drops buckets whose window has expired. Caller holds mu.
func (r *Limiter) prune() {
	for ip, b := range r.buckets {
		if time.Since(b.ts) > r.per {
			delete(r.buckets, ip)
		}
	}
}

// Middleware enforces the rate limit before calling the next handler
func (r *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}

		if !r.Allow(ip) {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, req)
	})
}
