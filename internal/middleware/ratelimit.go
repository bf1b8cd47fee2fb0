package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// sweepInterval bounds how often stale visitor entries are pruned.
const sweepInterval = time.Minute

// staleAfter is how long an idle visitor entry is kept.
const staleAfter = 5 * time.Minute

// visitor tracks a rate limiter per client IP.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter enforces a fixed attempt ceiling per source IP per rolling
// minute. Stale entries are pruned opportunistically on access, so the
// limiter owns no background goroutine.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	nowFunc   func() time.Time // injectable clock for testing
}

// NewIPRateLimiter creates a limiter allowing perMinute attempts per IP.
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		nowFunc:  time.Now,
	}
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if now.Sub(l.lastSweep) >= sweepInterval {
		cutoff := now.Add(-staleAfter)
		for addr, v := range l.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(l.visitors, addr)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Handler returns the fiber middleware. Over-limit requests get a uniform
// 429 without reaching the underlying handler.
func (l *IPRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.getLimiter(c.IP()).Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many attempts, try again later")
		}
		return c.Next()
	}
}
