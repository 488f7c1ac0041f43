package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimit struct {
	RatePerSecond float64
	Burst         int
	// TrustProxyHeaders keys anonymous clients on X-Real-IP and
	// X-Forwarded-For instead of the connection address.
	TrustProxyHeaders bool
}

type rateEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	visitorIdleTTL = 10 * time.Minute
	sweepInterval  = time.Minute
)

// RateLimiter applies a token bucket per client. Clients are keyed by caller
// when one is known and by address otherwise.
type RateLimiter struct {
	logger    *slog.Logger
	limit     RateLimit
	mu        sync.Mutex
	visitors  map[string]*rateEntry
	lastSweep time.Time
	clockNow  func() time.Time
}

func NewRateLimiter(limit RateLimit, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		logger:   logger,
		limit:    limit,
		visitors: make(map[string]*rateEntry),
		clockNow: time.Now,
	}
}

func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.limit.RatePerSecond <= 0 {
			next.ServeHTTP(w, req)
			return
		}
		identifier := clientID(req, r.limit.TrustProxyHeaders)
		if !r.obtainLimiter(identifier).AllowN(r.clockNow(), 1) {
			r.logger.Info("rate limit exceeded",
				slog.String("request_id", RequestIDFromContext(req.Context())),
				slog.String("path", req.URL.Path))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *RateLimiter) obtainLimiter(id string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clockNow()
	if now.Sub(r.lastSweep) >= sweepInterval {
		for key, entry := range r.visitors {
			if now.Sub(entry.lastSeen) > visitorIdleTTL {
				delete(r.visitors, key)
			}
		}
		r.lastSweep = now
	}
	entry, ok := r.visitors[id]
	if !ok {
		burst := r.limit.Burst
		if burst <= 0 {
			burst = 1
		}
		entry = &rateEntry{limiter: rate.NewLimiter(rate.Limit(r.limit.RatePerSecond), burst)}
		r.visitors[id] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (r *RateLimiter) visitorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

func clientID(r *http.Request, trustProxy bool) string {
	if caller, ok := CallerFromContext(r.Context()); ok {
		return "caller:" + caller
	}
	if trustProxy {
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if parsed := net.ParseIP(strings.TrimSpace(first)); parsed != nil {
				return parsed.String()
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
