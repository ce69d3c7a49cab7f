package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/handler/http/respond"
)

var errRateLimited = errors.New("rate limit exceeded")

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address. It throttles
// login attempts.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	// Retry-After in seconds
	retryAfter string
	idle       time.Duration
	now        func() time.Time
	swept      time.Time
}

// NewRateLimiter allows perMinute requests per minute and address, with
// bursts of burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	retry := 60
	if perMinute > 0 {
		retry = max(1, (60+perMinute-1)/perMinute)
	}
	now := time.Now
	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		limit:      rate.Limit(float64(perMinute) / 60),
		burst:      burst,
		retryAfter: strconv.Itoa(retry),
		idle:       10 * time.Minute,
		now:        now,
		swept:      now(),
	}
}

// Limit answers 429 with Retry-After once the client's bucket is empty.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip) {
			slog.Warn("rate limit exceeded",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("ip", ip),
				slog.String("path", r.URL.Path))
			w.Header().Set("Retry-After", rl.retryAfter)
			respond.SafeError(w, http.StatusTooManyRequests, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Size is the number of tracked addresses.
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.swept) >= rl.idle {
		rl.swept = now
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) > rl.idle {
				delete(rl.buckets, k)
			}
		}
	}

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the peer address. Unparsable header values are skipped.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
