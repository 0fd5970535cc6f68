package docserver

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const rateWindow = time.Minute

// RateLimiter counts requests per caller in fixed one-minute windows.
type RateLimiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	n     int
}

// NewRateLimiter allows limit requests per caller per minute. Idle windows
// are swept until ctx is done.
func NewRateLimiter(ctx context.Context, limit int) *RateLimiter {
	rl := newRateLimiter(limit, time.Now)
	go func() {
		t := time.NewTicker(5 * rateWindow)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				rl.sweep()
			}
		}
	}()
	return rl
}

func newRateLimiter(limit int, now func() time.Time) *RateLimiter {
	return &RateLimiter{limit: limit, now: now, windows: make(map[string]*window)}
}

// Allow records one request for caller. When the caller is over the limit it
// returns false and how long until its window resets.
func (rl *RateLimiter) Allow(caller string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[caller]
	if !ok || now.Sub(w.start) >= rateWindow {
		rl.windows[caller] = &window{start: now, n: 1}
		return true, 0
	}
	if w.n >= rl.limit {
		return false, rateWindow - now.Sub(w.start)
	}
	w.n++
	return true, 0
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-2 * rateWindow)
	for k, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, k)
		}
	}
}

// withRateLimit limits by API key, falling back to client IP on an open
// server.
func (s *Server) withRateLimit(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := "ip:" + clientIP(r)
		if id := getKeyIDFromContext(r.Context()); id != "" {
			caller = "key:" + id
		}
		ok, wait := s.rateLimiter.Allow(caller)
		if !ok {
			s.metrics.RecordRateLimited()
			logFor(r.Context()).Warn("rate limited", "caller", caller, "retry_in", wait.Round(time.Second).String())
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded")
			return
		}
		handler(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
