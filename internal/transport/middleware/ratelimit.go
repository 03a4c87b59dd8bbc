package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"golang.org/x/time/rate"
)

type ThrottleRecorder interface {
	RecordThrottled()
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	interval time.Duration
	recorder ThrottleRecorder
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows perMinute requests per client with the given burst.
func NewRateLimiter(perMinute, burst int, recorder ThrottleRecorder, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		interval: 5 * time.Minute,
		recorder: recorder,
		logger:   logger,
		clients:  make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.get(ip).Allow() {
			if rl.recorder != nil {
				rl.recorder.RecordThrottled()
			}
			rl.logger.Warn("rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
			rl.reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.interval * 2
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter) {
	retryAfter := 1
	if rl.limit > 0 {
		retryAfter = int(math.Ceil(1.0 / float64(rl.limit)))
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	_ = transport.WriteAppError(w, internal.NewTooManyRequestsError("too many requests, try again later"))
}

// clientIP keys on RemoteAddr, which chi's RealIP rewrites only when the
// server is configured to trust its proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
